package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/event-ticketing/internal/chat"
)

func (app *Application) JoinChatRoom(w http.ResponseWriter, r *http.Request, roomId string) {
	logger := app.contextGetLogger(r).With("room_id", roomId)

	if !chat.ValidRoomID(roomId) {
		app.badRequestResponse(w, r, fmt.Errorf("room ID must be 1 to %d letters, digits, hyphens or underscores", chat.MaxRoomIDLength))
		return
	}

	user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	member := chat.Member{
		UserID: user.ID,
		Name:   user.Name,
	}

	// the connection is hijacked once ServeWS returns, so failures are only logged
	err = app.hub.ServeWS(w, r, roomId, member)
	if err != nil {
		if errors.Is(err, chat.ErrHubStopped) {
			logger.Warn("chat connection refused: hub is shutting down")
			return
		}

		logger.Error("failed to join chat room", "error", err)
		return
	}

	logger.Info("joined chat room")
}
