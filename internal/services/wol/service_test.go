package wol

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veidtlabs/restic-backup/internal/models"
)

type mockSender struct {
	sendFunc func(addr string, target net.HardwareAddr) error
	calls    int
	lastAddr string
	lastMAC  net.HardwareAddr
}

func (m *mockSender) Send(addr string, target net.HardwareAddr) error {
	m.calls++
	m.lastAddr = addr
	m.lastMAC = target
	if m.sendFunc != nil {
		return m.sendFunc(addr, target)
	}
	return nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestWake_SendsPacket(t *testing.T) {
	sender := &mockSender{}
	svc := NewWithSender(testLogger(), sender)

	err := svc.Wake(context.Background(), models.WOLConfig{
		MACAddress:  "aa:bb:cc:dd:ee:ff",
		BroadcastIP: "192.168.1.255",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "192.168.1.255:9", sender.lastAddr)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", sender.lastMAC.String())
}

func TestWake_InvalidMAC(t *testing.T) {
	sender := &mockSender{}
	svc := NewWithSender(testLogger(), sender)

	err := svc.Wake(context.Background(), models.WOLConfig{
		MACAddress:  "not-a-mac",
		BroadcastIP: "192.168.1.255",
	})

	require.Error(t, err)
	assert.Zero(t, sender.calls)
}

func TestWake_InvalidBroadcastIP(t *testing.T) {
	sender := &mockSender{}
	svc := NewWithSender(testLogger(), sender)

	err := svc.Wake(context.Background(), models.WOLConfig{
		MACAddress:  "aa:bb:cc:dd:ee:ff",
		BroadcastIP: "not-an-ip",
	})

	require.Error(t, err)
	assert.Zero(t, sender.calls)
}

func TestWake_SendFailure(t *testing.T) {
	sender := &mockSender{
		sendFunc: func(string, net.HardwareAddr) error {
			return errors.New("network unreachable")
		},
	}
	svc := NewWithSender(testLogger(), sender)

	err := svc.Wake(context.Background(), models.WOLConfig{
		MACAddress:  "aa:bb:cc:dd:ee:ff",
		BroadcastIP: "255.255.255.255",
	})

	assert.ErrorContains(t, err, "sending WOL packet")
}
