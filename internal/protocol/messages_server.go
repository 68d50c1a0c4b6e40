package protocol

import (
	"github.com/nexusdb/nexusdb-driver-go/internal/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// ServersAllReq carries no fields; it exists so the RPC has a typed request.
type ServersAllReq struct{}

func (r *ServersAllReq) Marshal() ([]byte, error) { return nil, nil }
func (r *ServersAllReq) Unmarshal([]byte) error   { return nil }

const serversAllResFieldServers protowire.Number = 1

// ServersAllRes lists every server address known to the cluster at
// handshake time.
type ServersAllRes struct {
	Servers []string
}

func (r *ServersAllRes) Marshal() ([]byte, error) {
	w := wire.NewWriter(16 * len(r.Servers))
	for _, s := range r.Servers {
		w.PutString(serversAllResFieldServers, s)
	}
	return w.Bytes(), nil
}

func (r *ServersAllRes) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	r.Servers = nil
	for _, f := range fields {
		if f.Number != serversAllResFieldServers {
			continue
		}
		s, err := f.AsString()
		if err != nil {
			return err
		}
		r.Servers = append(r.Servers, s)
	}
	return nil
}
