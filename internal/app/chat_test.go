package app

import (
	"net/http"
	"strings"
	"testing"

	"github.com/metinatakli/event-ticketing/internal/chat"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

func TestJoinChatRoomRejectsBadRoomIds(t *testing.T) {
	tests := []struct {
		name   string
		roomId string
	}{
		{name: "empty room id", roomId: ""},
		{name: "room id too long", roomId: strings.Repeat("a", chat.MaxRoomIDLength+1)},
		{name: "single token wildcard", roomId: "*"},
		{name: "full wildcard", roomId: ">"},
		{name: "whitespace", roomId: "a b"},
		{name: "subject separator", roomId: "room.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication()

			w, r := executeRequest(t, http.MethodGet, "/chat/rooms/x", nil)
			r = withIdentity(app, r, testUserID, domain.RoleUser)

			app.JoinChatRoom(w, r, tt.roomId)

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     http.StatusBadRequest,
				wantErrMessage: "room ID must be 1 to 64 letters, digits, hyphens or underscores",
			})
		})
	}
}
