package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/timetable/core/timetable"
)

// TestNotifierIntegration publishes through a real Mosquitto broker.
func TestNotifierIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:1.6",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	got := make(chan Message, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("watcher"))
	require.True(t, sub.Connect().WaitTimeout(5*time.Second))
	defer sub.Disconnect(250)
	token := sub.Subscribe("timetable/changes/#", 1, func(_ paho.Client, m paho.Message) {
		var msg Message
		if json.Unmarshal(m.Payload(), &msg) == nil {
			got <- msg
		}
	})
	require.True(t, token.WaitTimeout(5*time.Second))
	require.NoError(t, token.Error())

	n, err := NewNotifier(Config{Broker: broker, QoS: 1}, nil, nil)
	require.NoError(t, err)
	defer n.Close()
	require.NoError(t, n.Notify(context.Background(), timetable.Change{Action: timetable.ActionSetCell, Target: "Friday_2", Value: "ICT", At: time.Now()}))

	select {
	case msg := <-got:
		assert.Equal(t, "Friday_2", msg.Target)
		assert.Equal(t, "ICT", msg.Value)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change message")
	}
}
