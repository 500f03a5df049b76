// Package bambu is the root of a client library for networked 3D printers
// that speak the Bambu Lab protocol family: an MQTT control/telemetry
// channel, a framed TCP/TLS camera stream, and an FTPS file-listing
// channel.
//
// The three protocols live in their own packages — camera, ftp and mqtt —
// each independently usable. internal/tlsconn holds the one TLS dial policy
// all three share: these printers present self-signed certificates bound to
// a bare IP, so every connection is made with peer verification disabled
// and the server name set to the literal IP address.
package bambu
