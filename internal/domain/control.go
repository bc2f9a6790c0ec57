package domain

// ControlKind discriminates events exchanged on the control data channel.
type ControlKind string

const (
	ControlPinnedEndpointsChanged            ControlKind = "PinnedEndpointsChangedEvent"
	ControlEndpointConnectivityStatusChanged ControlKind = "EndpointConnectivityStatusChangeEvent"
	ControlEndpointExpired                   ControlKind = "EndpointExpiredEvent"
	ControlUnknown                           ControlKind = "unknown"
)

type ControlEvent interface {
	Kind() ControlKind
}

// PinnedEndpointsChanged is only ever sent, never expected inbound.
type PinnedEndpointsChanged struct {
	PinnedEndpoints []EndpointID
}

type EndpointConnectivityStatusChanged struct {
	Endpoint EndpointID
	Active   bool
}

type EndpointExpired struct {
	Endpoint EndpointID
}

// UnknownControlEvent keeps the raw payload of an unrecognized class.
type UnknownControlEvent struct {
	Class string
	Raw   []byte
}

func (PinnedEndpointsChanged) Kind() ControlKind            { return ControlPinnedEndpointsChanged }
func (EndpointConnectivityStatusChanged) Kind() ControlKind { return ControlEndpointConnectivityStatusChanged }
func (EndpointExpired) Kind() ControlKind                   { return ControlEndpointExpired }
func (UnknownControlEvent) Kind() ControlKind               { return ControlUnknown }
