package ayla

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"culligan/internal/endpoint"
)

const (
	pathDevices    = "/apiv1/devices.json"
	pathProperties = "/apiv1/dsns/%s/properties.json"
)

// Device is a connected appliance registered to the account
type Device struct {
	DSN              string     `json:"dsn"`
	ProductName      string     `json:"product_name"`
	Model            string     `json:"model,omitempty"`
	OEMModel         string     `json:"oem_model,omitempty"`
	SWVersion        string     `json:"sw_version,omitempty"`
	MAC              string     `json:"mac,omitempty"`
	LANIP            string     `json:"lan_ip,omitempty"`
	ConnectionStatus string     `json:"connection_status,omitempty"`
	DeviceType       string     `json:"device_type,omitempty"`
	ConnectedAt      *time.Time `json:"connected_at,omitempty"`
	Key              int64      `json:"key,omitempty"`

	// Properties is filled by Session.Refresh, never by a listing call
	Properties map[string]Property `json:"-"`
}

type deviceFields Device

// UnmarshalJSON accepts both {"device":{...}} and the bare object
func (d *Device) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Device *deviceFields `json:"device"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Device != nil {
		*d = Device(*wrapped.Device)
		return nil
	}

	var flat deviceFields
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*d = Device(flat)
	return nil
}

// IsOnline reports whether the provider last saw the device connected
func (d Device) IsOnline() bool {
	return strings.EqualFold(d.ConnectionStatus, "online")
}

// Property returns a property filled by Session.Refresh
func (d Device) Property(name string) (Property, bool) {
	p, ok := d.Properties[name]
	return p, ok
}

// Property is a named device attribute
type Property struct {
	Name          string      `json:"name"`
	DisplayName   string      `json:"display_name,omitempty"`
	BaseType      string      `json:"base_type,omitempty"`
	Direction     string      `json:"direction,omitempty"`
	ReadOnly      bool        `json:"read_only"`
	Value         interface{} `json:"value"`
	DataUpdatedAt *time.Time  `json:"data_updated_at,omitempty"`
	Key           int64       `json:"key,omitempty"`
}

type propertyFields Property

// UnmarshalJSON accepts both {"property":{...}} and the bare object
func (p *Property) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Property *propertyFields `json:"property"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Property != nil {
		*p = Property(*wrapped.Property)
		return nil
	}

	var flat propertyFields
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*p = Property(flat)
	return nil
}

// StringValue renders the value as text; nil renders as ""
func (p Property) StringValue() string {
	switch v := p.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// FloatValue returns a numeric value, parsing numeric strings
func (p Property) FloatValue() (float64, bool) {
	switch v := p.Value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// IntValue returns the value as an integer if it has no fractional part
func (p Property) IntValue() (int64, bool) {
	f, ok := p.FloatValue()
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// BoolValue interprets booleans, 0/1 integers and "true"/"false" strings
func (p Property) BoolValue() (bool, bool) {
	switch v := p.Value.(type) {
	case bool:
		return v, true
	case float64:
		return v != 0, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	default:
		return false, false
	}
}

// ListDevices returns every device registered to the token's account
func (c *Client) ListDevices(ctx context.Context, token AccessToken) ([]Device, error) {
	var devices []Device
	resolved, err := c.getJSON(ctx, token, endpoint.SegmentDeviceData, pathDevices, &devices)
	if err != nil {
		return nil, err
	}

	for i, d := range devices {
		if d.DSN == "" {
			return nil, &DecodeError{
				Endpoint: resolved,
				Err:      fmt.Errorf("device entry %d has no dsn", i),
			}
		}
	}

	return devices, nil
}

// GetProperties returns the current properties of one device
func (c *Client) GetProperties(ctx context.Context, token AccessToken, dsn string) ([]Property, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrInvalidDSN
	}

	path := fmt.Sprintf(pathProperties, url.PathEscape(dsn))

	var properties []Property
	resolved, err := c.getJSON(ctx, token, endpoint.SegmentDeviceData, path, &properties)
	if err != nil {
		return nil, err
	}

	for i, p := range properties {
		if p.Name == "" {
			return nil, &DecodeError{
				Endpoint: resolved,
				Err:      fmt.Errorf("property entry %d has no name", i),
			}
		}
	}

	return properties, nil
}
