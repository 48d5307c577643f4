package net

// RouteHandleFunc processes a delivery at the end of a filter chain.
type RouteHandleFunc func(rd *RouteDelivery) error

// RouteFilter intercepts a delivery. It either calls f to continue the
// chain or returns without calling it to stop routing.
type RouteFilter func(rd *RouteDelivery, f RouteHandleFunc) error

// RouteFilterChain runs filters in order before the final handler.
type RouteFilterChain []RouteFilter

// Handle runs the chain and then f.
func (fc RouteFilterChain) Handle(rd *RouteDelivery, f RouteHandleFunc) error {
	if len(fc) == 0 {
		return f(rd)
	}
	return fc[0](rd, func(rd *RouteDelivery) error {
		return fc[1:].Handle(rd, f)
	})
}

func buildPacketFilterSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// packetFilter drops packets named in the router's packet filter.
func (r *Router) packetFilter(rd *RouteDelivery, f RouteHandleFunc) error {
	r.lock.RLock()
	_, blocked := r.packetFilterSet[rd.Packet.Name]
	r.lock.RUnlock()
	if !blocked {
		return f(rd)
	}
	r.drop("filtered")
	return ErrPacketFiltered
}
