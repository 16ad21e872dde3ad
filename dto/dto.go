package dto

import (
	"time"

	"github.com/google/uuid"
	"tutorial-service/constant"
	"tutorial-service/entities"
)

// TutorialRequest is the body accepted by create and update. Any id the client
// sends is decoded and then ignored.
type TutorialRequest struct {
	ID          *int64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
}

type TutorialEvent struct {
	EventId    uuid.UUID          `json:"eventId"`
	Type       constant.EventType `json:"type"`
	TutorialId int64              `json:"tutorialId,omitempty"`
	Tutorial   *entities.Tutorial `json:"tutorial"`
	OccurredAt time.Time          `json:"occurredAt"`
}
