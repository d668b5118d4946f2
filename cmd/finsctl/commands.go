package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/go-fins/fins"
	"github.com/arloliu/go-fins/finsudp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newIdentityCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Read the controller model and version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, v, func(p *finsudp.Pool, h finsudp.Handle) error {
				id, err := p.ReadControllerIdentity(h)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "PLC: %s [%s]\n", id.Model, id.Version)

				return nil
			})
		},
	}
}

func newReadCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "read [address] [count]",
		Short: "Read words, e.g. read C100 2",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			area, address, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			count := uint64(1)
			if len(args) == 2 {
				count, err = strconv.ParseUint(args[1], 10, 16)
				if err != nil {
					return fmt.Errorf("count must be a number: %w", err)
				}
			}

			return withSession(cmd, v, func(p *finsudp.Pool, h finsudp.Handle) error {
				words, err := p.ReadMemory(h, area, address, uint16(count))
				if err != nil {
					return err
				}
				for i, w := range words {
					fmt.Fprintf(cmd.OutOrStdout(), "%c%d\t%d\t0x%04X\n", area, int(address)+i, w, w)
				}

				return nil
			})
		},
	}
}

func newWriteCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "write [address] [word...]",
		Short: "Write words, e.g. write C101 42 0x2A",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			area, address, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			words, err := parseWords(args[1:])
			if err != nil {
				return err
			}

			return withSession(cmd, v, func(p *finsudp.Pool, h finsudp.Handle) error {
				if err := p.WriteMemory(h, area, address, words); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d word(s) to %c%d\n", len(words), area, address)

				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of finsctl",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finsctl v%s\n", Version)
		},
	}
}

// parseAddress splits an address like "C100" or "d0" into the area letter and the word address.
func parseAddress(s string) (byte, uint16, error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("invalid address %q, expected area letter and word address, e.g. D100", s)
	}

	area := strings.ToUpper(s[:1])[0]
	if _, err := fins.ParseMemoryArea(area); err != nil {
		return 0, 0, err
	}

	address, err := strconv.ParseUint(s[1:], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid word address in %q: %w", s, err)
	}

	return area, uint16(address), nil
}

// parseWords parses decimal or 0x prefixed hexadecimal words.
func parseWords(args []string) ([]uint16, error) {
	words := make([]uint16, 0, len(args))
	for _, arg := range args {
		w, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid word %q: %w", arg, err)
		}
		words = append(words, uint16(w))
	}

	return words, nil
}
