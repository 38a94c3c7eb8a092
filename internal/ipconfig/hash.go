package ipconfig

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"hash"
	"net"
)

// Hash feeds the semantically relevant fields into h in a fixed order:
// gateway, addresses (IP, prefix), routes (network, prefix, gateway,
// metric), NIS servers, NIS domain, then nameservers, WINS servers,
// domains and searches. With dnsOnly set, only the last four groups are
// fed, which gives a digest that tracks resolver-relevant state.
//
// Labels, lifetimes, sources, MSS, MTU and the never-default flag are
// deliberately outside the digest.
func (c *Config) Hash(h hash.Hash, dnsOnly bool) {
	if !dnsOnly {
		hashIP(h, c.gateway)

		for i := range c.addresses {
			hashIP(h, c.addresses[i].IP)
			hashUint32(h, uint32(c.addresses[i].PrefixLen))
		}

		for i := range c.routes {
			r := &c.routes[i]
			hashIP(h, r.Network)
			hashUint32(h, uint32(r.PrefixLen))
			hashIP(h, r.Gateway)
			hashUint32(h, r.Metric)
		}

		for _, ip := range c.nisServers {
			hashIP(h, ip)
		}
		if c.nisDomain != "" {
			h.Write([]byte(c.nisDomain))
		}
	}

	for _, ip := range c.nameservers {
		hashIP(h, ip)
	}
	for _, ip := range c.winsServers {
		hashIP(h, ip)
	}
	for _, s := range c.domains {
		h.Write([]byte(s))
	}
	for _, s := range c.searches {
		h.Write([]byte(s))
	}
}

// Fingerprint returns the SHA-1 digest of the config's semantically
// relevant content. A nil config fingerprints like an empty one.
func (c *Config) Fingerprint(dnsOnly bool) []byte {
	h := sha1.New()
	if c != nil {
		c.Hash(h, dnsOnly)
	}
	return h.Sum(nil)
}

// Equal reports whether a and b carry the same semantically relevant
// content. A nil config equals an empty one.
func Equal(a, b *Config) bool {
	return bytes.Equal(a.Fingerprint(false), b.Fingerprint(false))
}

// hashIP writes the 4-byte network-order form of ip, zero bytes when
// unset.
func hashIP(h hash.Hash, ip net.IP) {
	var buf [4]byte
	if v4 := ip.To4(); v4 != nil {
		copy(buf[:], v4)
	}
	h.Write(buf[:])
}

func hashUint32(h hash.Hash, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}
