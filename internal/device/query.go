package device

import "chronolink/internal/transport"

// QueryResponse round-trips one text command to one text reply. When built
// with a sentence absorber, replies that start with '$' are buffered there
// and the next read is taken as the reply instead.
type QueryResponse struct {
	Base
	absorb *NMEA
}

func NewQueryResponse(t *transport.Transport) *QueryResponse {
	return &QueryResponse{Base: NewBase(t)}
}

// NewQueryResponseWithSentences routes every reply through n.Absorb.
func NewQueryResponseWithSentences(t *transport.Transport, n *NMEA) *QueryResponse {
	return &QueryResponse{Base: NewBase(t), absorb: n}
}

// Query writes cmd and returns the reply verbatim.
func (q *QueryResponse) Query(cmd string) (string, error) {
	reply, err := q.t.Query(cmd)
	if err != nil {
		return "", err
	}
	if q.absorb != nil {
		return q.absorb.Absorb(reply)
	}
	return reply, nil
}

// Command writes cmd and discards the echo and prompt.
func (q *QueryResponse) Command(cmd string) error {
	return q.command(cmd)
}

// SCPI adds the IEEE 488.2 identification query.
type SCPI struct {
	*QueryResponse
}

func NewSCPI(q *QueryResponse) *SCPI { return &SCPI{QueryResponse: q} }

// Identify returns "<manufacturer>, <model>, <serial>, <firmware>".
func (s *SCPI) Identify() (string, error) {
	return s.Query("*IDN?")
}
