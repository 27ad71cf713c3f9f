package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// providerServer fakes the provider and counts sign-in requests
func providerServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	signIns := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("/users/sign_in.json", func(w http.ResponseWriter, r *http.Request) {
		signIns.Add(1)
		w.Write([]byte(`{"access_token":"abc123"}`))
	})
	mux.HandleFunc("/users/get_user_profile.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uuid":"u-1","email":"a@b.com","firstname":"Ada"}`))
	})
	mux.HandleFunc("/apiv1/devices.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"device":{"dsn":"AC000W123","product_name":"Softener"}}]`))
	})
	mux.HandleFunc("/apiv1/dsns/AC000W123/properties.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"property":{"name":"salt_level","value":"4.5"}}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, signIns
}

func writeConfig(t *testing.T, serverURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	content := fmt.Sprintf(`{
		"account": {"email": "a@b.com", "password": "x", "app_id": "id1", "app_secret": "sec1"},
		"api": {"endpoints": {"user": %q, "ads": %q}}
	}`, serverURL, serverURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_Devices(t *testing.T) {
	server, _ := providerServer(t)
	var out bytes.Buffer

	require.NoError(t, run(writeConfig(t, server.URL), false, "devices", "", false, &out))

	var devices []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "AC000W123", devices[0]["dsn"])
}

func TestRun_PropertiesOfEveryDevice(t *testing.T) {
	server, _ := providerServer(t)
	var out bytes.Buffer

	require.NoError(t, run(writeConfig(t, server.URL), false, "properties", "", false, &out))

	var reports []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "Softener", reports[0]["product_name"])
	properties := reports[0]["properties"].([]interface{})
	assert.Equal(t, "salt_level", properties[0].(map[string]interface{})["name"])
}

func TestRun_SignInDoesNotPrintToken(t *testing.T) {
	server, _ := providerServer(t)
	var out bytes.Buffer

	require.NoError(t, run(writeConfig(t, server.URL), false, "signin", "", false, &out))
	assert.Contains(t, out.String(), "authenticated")
	assert.NotContains(t, out.String(), "abc123")
}

func TestRun_Profile(t *testing.T) {
	server, signIns := providerServer(t)
	var out bytes.Buffer

	require.NoError(t, run(writeConfig(t, server.URL), false, "profile", "", false, &out))

	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &profile))
	assert.Equal(t, "a@b.com", profile["email"])
	assert.Equal(t, "u-1", profile["uuid"])
	assert.Equal(t, int32(1), signIns.Load())
}

func TestRun_UnknownActionSkipsSignIn(t *testing.T) {
	server, signIns := providerServer(t)
	var out bytes.Buffer

	err := run(writeConfig(t, server.URL), false, "reboot", "", false, &out)
	assert.ErrorContains(t, err, "unknown action")
	assert.Equal(t, int32(0), signIns.Load())
	assert.Empty(t, out.String())

	err = run(filepath.Join(t.TempDir(), "missing.json"), false, "reboot", "", false, &out)
	assert.ErrorContains(t, err, "unknown action")
}
