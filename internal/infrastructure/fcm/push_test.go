package fcm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeMessage_AppliesDefaults(t *testing.T) {
	msg := ComposeMessage("tok-1", PushPayload{Title: "Hi", Body: "there"})

	require.NotNil(t, msg.Webpush)
	require.NotNil(t, msg.Webpush.Notification)
	assert.Equal(t, "tok-1", msg.Token)
	assert.Equal(t, DefaultIcon, msg.Webpush.Notification.Icon)
	assert.Equal(t, DefaultBadge, msg.Webpush.Notification.Badge)
	assert.Equal(t, DefaultTag, msg.Webpush.Notification.Tag)
	assert.Equal(t, "Hi", msg.Webpush.Notification.Title)
}

func TestComposeMessage_KeepsExplicitValues(t *testing.T) {
	msg := ComposeMessage("tok-1", PushPayload{
		Title: "Hi", Icon: "/custom.png", Badge: "/b.png", Tag: "custom-tag",
		RequireInteraction: true,
		Data:               map[string]string{"k": "v"},
		Actions: []PushAction{
			{Action: "join", Title: "Join Now"},
			{Action: "dismiss", Title: "Dismiss"},
		},
	})

	n := msg.Webpush.Notification
	assert.Equal(t, "/custom.png", n.Icon)
	assert.Equal(t, "/b.png", n.Badge)
	assert.Equal(t, "custom-tag", n.Tag)
	assert.True(t, n.RequireInteraction)
	assert.False(t, n.Silent)
	require.Len(t, n.Actions, 2)
	assert.Equal(t, "join", n.Actions[0].Action)
	assert.Equal(t, map[string]string{"k": "v"}, msg.Webpush.Data)
}

func TestActionRoute(t *testing.T) {
	assert.Equal(t, "/dashboard", ActionRoute("view"))
	assert.Equal(t, "/live", ActionRoute("join"))
	assert.Equal(t, "/journal", ActionRoute("journal"))
	assert.Equal(t, "", ActionRoute("dismiss"))
	assert.Equal(t, "/", ActionRoute("something-else"))
}
