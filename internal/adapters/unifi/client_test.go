package unifi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	devicesJSON = `{"meta":{"rc":"ok"},"data":[
		{"mac":"AA:AA:AA:00:00:01","name":"Gateway","model":"UDMPRO","type":"udm","ip":"192.168.1.1",
		 "port_table":[{"port_idx":9,"name":"Port 9","speed":10000,"up":true}]},
		{"mac":"aa:aa:aa:00:00:02","name":"Core","model":"USW24","type":"usw","ip":"192.168.1.2",
		 "uplink":{"uplink_mac":"aa:aa:aa:00:00:01","uplink_remote_port":9,"port_idx":25,"type":"wire","speed":10000},
		 "port_table":[{"port_idx":3,"speed":1000,"up":true},{"port_idx":25,"speed":10000,"up":true}]},
		{"mac":"aa:aa:aa:00:00:03","name":"Garage AP","model":"U6LR","type":"uap","ip":"192.168.1.3",
		 "uplink":{"uplink_mac":"aa:aa:aa:00:00:02","type":"wireless","tx_rate":866000,"radio":"na"},
		 "radio_table":[{"name":"wifi0","radio":"ng"},{"name":"wifi1","radio":"na"}]},
		{"name":"ghost"}
	]}`

	clientsJSON = `{"meta":{"rc":"ok"},"data":[
		{"mac":"CC:CC:CC:00:00:01","hostname":"nas","ip":"192.168.1.50","is_wired":true,
		 "sw_mac":"aa:aa:aa:00:00:02","sw_port":3,"network_id":"lan","network":"Default"},
		{"mac":"cc:cc:cc:00:00:02","hostname":"phone","ip":"192.168.20.7","is_wired":false,
		 "ap_mac":"AA:AA:AA:00:00:03","tx_rate":573500,"radio":"na","vlan":"20"}
	]}`

	networksJSON = `{"meta":{"rc":"ok"},"data":[
		{"_id":"lan","name":"Default","purpose":"corporate","ip_subnet":"192.168.1.1/24"},
		{"_id":"iot","name":"IoT","purpose":"corporate","vlan_enabled":true,"vlan":20,"ip_subnet":"192.168.20.1/24","enabled":true},
		{"_id":"guest","name":"Guest","purpose":"guest","vlan_enabled":true,"vlan":"30","ip_subnet":"192.168.30.1/24","enabled":false},
		{"_id":"wan","name":"WAN","purpose":"wan"}
	]}`
)

type fakeController struct {
	prefix   string
	logins   atomic.Int32
	requests atomic.Int32
	// expireAfter drops the session after that many successful reads (0 = never).
	expireAfter int32
}

func (f *fakeController) handler(loginPath string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Username != "admin" || body.Password != "secret" {
			http.Error(w, `{"meta":{"rc":"error","msg":"api.err.Invalid"}}`, http.StatusUnauthorized)
			return
		}
		n := f.logins.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "unifises", Value: "session-" + string(rune('0'+n)), Path: "/"})
		w.Header().Set("X-CSRF-Token", "csrf")
		_, _ = w.Write([]byte(`{"meta":{"rc":"ok"},"data":[]}`))
	})

	serve := func(payload string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("unifises")
			if err != nil || cookie.Value != "session-"+string(rune('0'+f.logins.Load())) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			n := f.requests.Add(1)
			if f.expireAfter > 0 && n == f.expireAfter {
				// invalidate by bumping the expected session
				f.logins.Add(1)
			}
			_, _ = w.Write([]byte(payload))
		}
	}
	mux.HandleFunc(f.prefix+"/api/s/default/stat/device", serve(devicesJSON))
	mux.HandleFunc(f.prefix+"/api/s/default/stat/sta", serve(clientsJSON))
	mux.HandleFunc(f.prefix+"/api/s/default/rest/networkconf", serve(networksJSON))
	return mux
}

func newTestClient(t *testing.T, url string, unifiOS bool, password string) *Client {
	t.Helper()
	c, err := NewClient(Config{URL: url + "/", Username: "admin", Password: password, UnifiOS: unifiOS}, nil)
	require.NoError(t, err)
	return c
}

func TestClient_ListDevices(t *testing.T) {
	fc := &fakeController{}
	srv := httptest.NewServer(fc.handler("/api/login"))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, "secret")
	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 3, "records without a MAC are skipped")

	gw := devices[0]
	assert.Equal(t, domain.RoleGateway, gw.Role)
	assert.False(t, gw.ServesWiFi)
	assert.Nil(t, gw.Uplink)

	sw := devices[1]
	assert.Equal(t, domain.RoleSwitch, sw.Role)
	require.NotNil(t, sw.Uplink)
	assert.Equal(t, "aa:aa:aa:00:00:01", sw.Uplink.MAC)
	assert.Equal(t, 9, sw.Uplink.Port)
	assert.Equal(t, 25, sw.Uplink.LocalPort)
	assert.Equal(t, domain.UplinkWired, sw.Uplink.Medium)
	assert.Equal(t, 10000, sw.Uplink.SpeedMbps)
	assert.Len(t, sw.Ports, 2)

	ap := devices[2]
	assert.Equal(t, domain.RoleAccessPoint, ap.Role)
	require.NotNil(t, ap.Uplink)
	assert.Equal(t, domain.UplinkWireless, ap.Uplink.Medium)
	assert.Equal(t, 866, ap.Uplink.RateMbps)
	assert.Equal(t, "5 GHz", ap.Uplink.RadioBand)

	assert.Equal(t, int32(1), fc.logins.Load())
}

func TestClient_ListClientsAndNetworks(t *testing.T) {
	fc := &fakeController{}
	srv := httptest.NewServer(fc.handler("/api/login"))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, "secret")
	clients, err := c.ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)

	assert.True(t, clients[0].IsWired)
	assert.Equal(t, "aa:aa:aa:00:00:02", clients[0].SwitchMAC)
	assert.Equal(t, 3, clients[0].SwitchPort)
	assert.Equal(t, "Default", clients[0].NetworkName)

	assert.False(t, clients[1].IsWired)
	assert.Equal(t, "aa:aa:aa:00:00:03", clients[1].APMAC)
	assert.Equal(t, 573, clients[1].TxRateMbps)
	assert.Equal(t, "5 GHz", clients[1].RadioBand)
	assert.Equal(t, 20, clients[1].VLAN)

	networks, err := c.ListNetworks(context.Background())
	require.NoError(t, err)
	require.Len(t, networks, 3, "wan is dropped")
	assert.Nil(t, networks[0].VLAN)
	assert.True(t, networks[0].Enabled)
	require.NotNil(t, networks[1].VLAN)
	assert.Equal(t, 20, *networks[1].VLAN)
	assert.Equal(t, 30, networks[2].VLANTag())
	assert.False(t, networks[2].Enabled)

	assert.Equal(t, int32(1), fc.logins.Load(), "session is reused")
}

func TestClient_UnifiOSPaths(t *testing.T) {
	fc := &fakeController{prefix: "/proxy/network"}
	srv := httptest.NewServer(fc.handler("/api/auth/login"))
	defer srv.Close()

	c := newTestClient(t, srv.URL, true, "secret")
	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 3)
}

func TestClient_RelogsInOnUnauthorized(t *testing.T) {
	fc := &fakeController{expireAfter: 1}
	srv := httptest.NewServer(fc.handler("/api/login"))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, "secret")
	_, err := c.ListDevices(context.Background())
	require.NoError(t, err)

	// The session was dropped server-side; the next read must log in again.
	_, err = c.ListNetworks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), fc.logins.Load())
}

func TestClient_BadCredentials(t *testing.T) {
	fc := &fakeController{}
	srv := httptest.NewServer(fc.handler("/api/login"))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, "wrong")
	_, err := c.ListDevices(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/login") {
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, "secret")
	_, err := c.ListClients(context.Background())
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.Status)
	assert.Contains(t, err.Error(), "stat/sta")
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)
}

func TestFlexInt(t *testing.T) {
	var v struct {
		A flexInt `json:"a"`
		B flexInt `json:"b"`
		C flexInt `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":20,"b":"30","c":null}`), &v))
	assert.Equal(t, flexInt(20), v.A)
	assert.Equal(t, flexInt(30), v.B)
	assert.Equal(t, flexInt(0), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"x"}`), &v))
}

func TestRoleAndBandMapping(t *testing.T) {
	assert.Equal(t, domain.RoleGateway, RoleForType("UGW"))
	assert.Equal(t, domain.RoleGateway, RoleForType("uxg"))
	assert.Equal(t, domain.RoleSwitch, RoleForType("usw"))
	assert.Equal(t, domain.RoleAccessPoint, RoleForType("uap"))
	assert.Equal(t, domain.RoleUnknown, RoleForType("ubb"))

	assert.Equal(t, "2.4 GHz", BandForRadio("ng"))
	assert.Equal(t, "6 GHz", BandForRadio("6e"))
	assert.Equal(t, "", BandForRadio(""))
}
