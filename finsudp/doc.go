// Package finsudp implements a FINS client over UDP.
//
// A Pool owns a set of sessions, each bound to one remote controller and addressed by a
// small integer Handle. Every session has its own ephemeral local UDP port, a one-byte
// sequence (service id) counter and an exchange lock that allows a single request in
// flight at a time. Requests on different sessions run in parallel.
//
// # Exchange
//
// Sending a command increments the session sequence id, stamps it into the frame and sends
// the datagram to the controller. The session then waits for the reply:
//
//   - datagrams from any other address or port are discarded
//   - replies carrying an older sequence id (delayed replies of timed out requests) are discarded
//   - every discarded datagram starts a new receive timeout window
//
// The accepted reply must be at least 14 bytes long, carry zero response codes and be long
// enough for the command. Typed operations additionally check that the reply comes from the
// node the request was addressed to.
//
// # Usage
//
//	cfg, _ := finsudp.NewPoolConfig(finsudp.WithReceiveTimeout(500 * time.Millisecond))
//	pool, _ := finsudp.NewPool(cfg)
//	defer pool.CloseAll()
//
//	h, err := pool.Open("192.168.250.1", 9600, finsudp.TransportUDP, 1)
//	if err != nil {
//		return err
//	}
//	words, err := pool.ReadMemory(h, 'D', 100, 2)
package finsudp
