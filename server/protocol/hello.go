package protocol

// Version is the protocol version this build of the server speaks, checked
// against a connecting client's Hello.Version for compatibility.
const Version = "v1.0.0"

// Hello is the single handshake frame a client sends immediately after
// connecting, before any Command frames.
type Hello struct {
	Version string
	Alias   string
}

// EncodeHello serialises h to its wire form.
func EncodeHello(h Hello) []byte {
	w := NewWriter()
	w.String(h.Version)
	w.String(h.Alias)
	return w.Bytes()
}

// DecodeHello parses the handshake frame a client sends on connect.
func DecodeHello(data []byte) (Hello, error) {
	r := NewReader(data)
	version, err := r.String()
	if err != nil {
		return Hello{}, err
	}
	alias, err := r.String()
	if err != nil {
		return Hello{}, err
	}
	return Hello{Version: version, Alias: alias}, nil
}
