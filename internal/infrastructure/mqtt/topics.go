package mqtt

import (
	"fmt"
	"strings"
)

// TopicRoot is the first level of every homecontrol topic.
const TopicRoot = "homecontrol"

// Topics provides builders for homecontrol MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.HueState("upstairs", "light", "3f2a")
//	// Returns: "homecontrol/state/hue/upstairs/light/3f2a"
type Topics struct{}

// SystemStatus returns the retained online/offline status topic.
//
// Example: homecontrol/system/status
func (Topics) SystemStatus() string {
	return TopicRoot + "/system/status"
}

// State returns a state topic for a source and path segments.
//
// Example: homecontrol/state/roomstate/abc
func (Topics) State(source string, path ...string) string {
	parts := append([]string{TopicRoot, "state", source}, path...)
	return strings.Join(parts, "/")
}

// HueState returns the state topic for one Hue resource.
//
// Example: homecontrol/state/hue/upstairs/grouped_light/9b1e
func (t Topics) HueState(bridge, rtype, id string) string {
	return t.State("hue", bridge, rtype, id)
}

// AllStates matches every state topic.
//
// Pattern: homecontrol/state/#
func (Topics) AllStates() string {
	return TopicRoot + "/state/#"
}

// StateTopic is a parsed homecontrol state topic.
type StateTopic struct {
	Source string   // "hue", "roomstate", ...
	Path   []string // remaining segments
}

// ParseStateTopic splits a topic produced by State. ok is false for topics
// outside homecontrol/state/ or without a source.
func ParseStateTopic(topic string) (st StateTopic, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicRoot+"/state/")
	if !found || rest == "" {
		return StateTopic{}, false
	}
	parts := strings.Split(rest, "/")
	for _, p := range parts {
		if p == "" {
			return StateTopic{}, false
		}
	}
	return StateTopic{Source: parts[0], Path: parts[1:]}, true
}

// String rebuilds the topic.
func (st StateTopic) String() string {
	return Topics{}.State(st.Source, st.Path...)
}

// validateSegment rejects values that would change the topic structure.
func validateSegment(name, value string) error {
	if value == "" || strings.ContainsAny(value, "/+#") {
		return fmt.Errorf("%w: %s %q", ErrInvalidTopic, name, value)
	}
	return nil
}
