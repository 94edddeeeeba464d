package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	s := FromEnv(lookupFrom(nil))

	assert.Equal(t, Defaults(), s)
	assert.Equal(t, 20*time.Second, s.ConfigTimeout)
	assert.Equal(t, "hci0", s.Adapter)
}

func TestFromEnv_Overrides(t *testing.T) {
	s := FromEnv(lookupFrom(map[string]string{
		EnvKeyAdapter:        "hci1",
		EnvKeyDemo:           "true",
		EnvKeyHeadless:       "1",
		EnvKeyListenAddr:     ":9000",
		EnvKeyConfigTimeout:  "45s",
		EnvKeyPortalRate:     "2.5",
		EnvKeyPortalBurst:    "4",
		EnvKeyNATSURL:        "nats://localhost:4222",
		EnvKeyTelegramChatID: "-100123",
	}))

	assert.Equal(t, "hci1", s.Adapter)
	assert.True(t, s.Demo)
	assert.True(t, s.Headless)
	assert.Equal(t, ":9000", s.ListenAddr)
	assert.Equal(t, 45*time.Second, s.ConfigTimeout)
	assert.Equal(t, 2.5, s.PortalRate)
	assert.Equal(t, 4, s.PortalBurst)
	assert.Equal(t, "nats://localhost:4222", s.NATSURL)
	assert.Equal(t, int64(-100123), s.TelegramChatID)
}

func TestFromEnv_MalformedKeepsDefault(t *testing.T) {
	s := FromEnv(lookupFrom(map[string]string{
		EnvKeyDemo:          "maybe",
		EnvKeyConfigTimeout: "soon",
		EnvKeyPortalBurst:   "-3",
		EnvKeyAdapter:       "   ",
	}))

	d := Defaults()
	assert.Equal(t, d.Demo, s.Demo)
	assert.Equal(t, d.ConfigTimeout, s.ConfigTimeout)
	assert.Equal(t, d.PortalBurst, s.PortalBurst)
	assert.Equal(t, d.Adapter, s.Adapter)
}
