// internal/probe/uri.go
package probe

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Transport kinds understood by OpenURI.
const (
	KindSerial = "serial"
	KindTCP    = "tcp"
)

// Serial line defaults (8N1, 9600 baud).
const (
	DefaultBaudRate = 9600
	DefaultDataBits = 8
	DefaultParity   = "N"
	DefaultStopBits = 1
)

// Endpoint is a parsed device port URI.
//
//	serial:///dev/ttyUSB0:19200?parity=E&stop_bits=1
//	tcp://10.0.0.5:502
type Endpoint struct {
	Kind    string
	Address string // device path or host:port

	BaudRate int
	DataBits int
	Parity   string
	StopBits int
}

// ParseURI parses a device port URI.
func ParseURI(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("probe: bad uri %q: %w", raw, err)
	}

	switch u.Scheme {
	case KindSerial:
		return parseSerial(raw, u)

	case KindTCP:
		if u.Host == "" || u.Port() == "" {
			return Endpoint{}, fmt.Errorf("probe: bad uri %q: tcp requires host:port", raw)
		}
		return Endpoint{Kind: KindTCP, Address: u.Host}, nil

	default:
		return Endpoint{}, fmt.Errorf("probe: bad uri %q: unsupported scheme %q", raw, u.Scheme)
	}
}

func parseSerial(raw string, u *url.URL) (Endpoint, error) {
	ep := Endpoint{
		Kind:     KindSerial,
		BaudRate: DefaultBaudRate,
		DataBits: DefaultDataBits,
		Parity:   DefaultParity,
		StopBits: DefaultStopBits,
	}

	path := u.Path
	if i := strings.LastIndex(path, ":"); i >= 0 {
		baud, err := strconv.Atoi(path[i+1:])
		if err != nil || baud <= 0 {
			return Endpoint{}, fmt.Errorf("probe: bad uri %q: invalid baud rate", raw)
		}
		ep.BaudRate = baud
		path = path[:i]
	}
	if path == "" {
		return Endpoint{}, fmt.Errorf("probe: bad uri %q: serial device required", raw)
	}
	ep.Address = path

	q := u.Query()
	if p := q.Get("parity"); p != "" {
		p = strings.ToUpper(p)
		if p != "N" && p != "E" && p != "O" {
			return Endpoint{}, fmt.Errorf("probe: bad uri %q: parity must be N, E or O", raw)
		}
		ep.Parity = p
	}
	if s := q.Get("stop_bits"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || (n != 1 && n != 2) {
			return Endpoint{}, fmt.Errorf("probe: bad uri %q: stop_bits must be 1 or 2", raw)
		}
		ep.StopBits = n
	}
	if s := q.Get("data_bits"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 5 || n > 8 {
			return Endpoint{}, fmt.Errorf("probe: bad uri %q: data_bits must be 5..8", raw)
		}
		ep.DataBits = n
	}

	return ep, nil
}
