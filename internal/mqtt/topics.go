package mqtt

import "strings"

// DefaultTopicPrefix is the root of every topic when Config.TopicPrefix is empty
const DefaultTopicPrefix = "culligan"

// Topics builds topic names under a prefix.
//
//	topics := mqtt.Topics{Prefix: "culligan"}
//	topics.DeviceState("AC000W123") // "culligan/AC000W123/state"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// BridgeStatus carries "online"/"offline"; it is also the Last Will topic.
func (t Topics) BridgeStatus() string {
	return t.prefix() + "/bridge/status"
}

// DeviceState carries the retained JSON state of one device.
func (t Topics) DeviceState(dsn string) string {
	return t.prefix() + "/" + level(dsn) + "/state"
}

// DeviceProperty carries the plain value of one property. Properties sit one
// level below the device so no property name can shadow DeviceState.
func (t Topics) DeviceProperty(dsn, property string) string {
	return t.prefix() + "/" + level(dsn) + "/properties/" + level(property)
}

// level makes s safe to use as a single topic level
func level(s string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(strings.TrimSpace(s))
}
