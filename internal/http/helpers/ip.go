package helpers

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP devuelve el host de r.RemoteAddr. Los headers de proxy solo se
// consideran a través de TrustedProxies (middleware WithClientIP), que deja
// la IP resuelta en RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// TrustedProxies decide cuándo creer en X-Forwarded-For / X-Real-IP.
type TrustedProxies []netip.Prefix

func (t TrustedProxies) trusts(a netip.Addr) bool {
	a = a.Unmap()
	for _, p := range t {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// ClientIP resuelve la IP del cliente. Si la conexión no viene de un proxy
// confiable los headers se ignoran. Si viene de uno, X-Forwarded-For se
// recorre de derecha a izquierda y gana la primera IP no confiable.
func (t TrustedProxies) ClientIP(r *http.Request) string {
	remote := ClientIP(r)
	addr, err := netip.ParseAddr(remote)
	if err != nil || len(t) == 0 || !t.trusts(addr) {
		return remote
	}

	if xf := r.Header.Values("X-Forwarded-For"); len(xf) > 0 {
		hops := strings.Split(strings.Join(xf, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				// basura en la cadena: no se puede seguir más atrás
				break
			}
			if !t.trusts(hop) {
				return hop.Unmap().String()
			}
		}
	}
	if xr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xr.Unmap().String()
	}
	return remote
}
