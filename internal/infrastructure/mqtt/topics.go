package mqtt

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "elgato-light"

// Topics builds elgato-light MQTT topics under a common prefix.
//
//	topics := mqtt.NewTopics("office")
//	topics.LightState("Key Light Left")
//	// Returns: "office/light/key-light-left/state"
type Topics struct {
	prefix string
}

// NewTopics returns topic builders rooted at prefix. Trailing slashes are
// dropped; an empty prefix means DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// LightState returns the retained state topic for a light.
//
// Example: elgato-light/light/key-light-left/state
func (t Topics) LightState(name string) string {
	return fmt.Sprintf("%s/light/%s/state", t.prefix, Slug(name))
}

// Invocation returns the topic receiving one summary per CLI invocation.
//
// Example: elgato-light/invocation
func (t Topics) Invocation() string {
	return t.prefix + "/invocation"
}

// Slug lowercases name and replaces every run of characters outside
// [a-z0-9] with a single hyphen, so MQTT wildcards and separators never
// leak into a topic level.
func Slug(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}
