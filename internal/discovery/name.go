package discovery

import (
	"strings"

	"github.com/miekg/dns"
)

// serviceSuffix returns ".<service>.<domain>." for stripping from a full
// service instance name.
func serviceSuffix(service, domain string) string {
	return "." + dns.Fqdn(strings.Trim(service, ".")+"."+strings.Trim(domain, "."))
}

// instanceName turns a full DNS-SD service instance name into the display
// name of the light: the service suffix is removed (case-insensitively) and
// DNS presentation escapes are decoded.
func instanceName(full, suffix string) string {
	full = dns.Fqdn(full)
	if len(full) >= len(suffix) && strings.EqualFold(full[len(full)-len(suffix):], suffix) {
		full = full[:len(full)-len(suffix)]
	} else {
		full = strings.TrimSuffix(full, ".")
	}
	return unescapeLabel(full)
}

// unescapeLabel decodes "\X" and "\DDD" presentation escapes. Malformed
// escapes are kept literally.
func unescapeLabel(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		if i+3 < len(s) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
			v := int(s[i+1]-'0')*100 + int(s[i+2]-'0')*10 + int(s[i+3]-'0')
			if v <= 255 {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i+1])
		i++
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
