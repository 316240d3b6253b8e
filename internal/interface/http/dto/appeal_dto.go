package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/usecase/appeal"
)

// SubmitAppealRequest содержит поля формы апелляции. Обязательность полей проверяет домен,
// чтобы пустые и пробельные значения давали одинаковую VALIDATION_ERROR.
type SubmitAppealRequest struct {
	Username     string  `json:"username"`
	Reason       string  `json:"reason"`
	Explanation  string  `json:"explanation"`
	DiscordTag   *string `json:"discordTag"`
	ContactEmail string  `json:"contactEmail"`
}

func (r SubmitAppealRequest) ToInput() appeal.SubmitAppealInput {
	return appeal.SubmitAppealInput{
		Username:     r.Username,
		Reason:       r.Reason,
		Explanation:  r.Explanation,
		DiscordTag:   r.DiscordTag,
		ContactEmail: r.ContactEmail,
	}
}

type DecideAppealRequest struct {
	Verdict string `json:"verdict"`
	Note    string `json:"note"`
}

type AppealResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Reason      string     `json:"reason"`
	Explanation string     `json:"explanation"`
	DiscordTag  *string    `json:"discordTag,omitempty"`
	UserEmail   string     `json:"userEmail"`
	UID         string     `json:"uid"`
	AuthType    string     `json:"authType"`
	Timestamp   int64      `json:"timestamp"`
	Status      string     `json:"status"`
	AdminNote   *string    `json:"adminNote,omitempty"`
	DecidedBy   *string    `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	AIFlag      *string    `json:"ai_flag,omitempty"`
	AIVerified  bool       `json:"aiVerified"`
}

func ToAppealResponse(a *entity.Appeal) AppealResponse {
	resp := AppealResponse{
		ID:          a.ID,
		Username:    a.Username,
		Reason:      a.Reason,
		Explanation: a.Explanation,
		DiscordTag:  a.DiscordTag,
		UserEmail:   a.UserEmail,
		UID:         a.UID,
		AuthType:    string(a.AuthType),
		Timestamp:   a.Timestamp,
		Status:      string(a.Status),
		AdminNote:   a.AdminNote,
		DecidedBy:   a.DecidedBy,
		DecidedAt:   a.DecidedAt,
		AIVerified:  a.AIVerified,
	}
	if a.AIFlag != nil {
		flag := string(*a.AIFlag)
		resp.AIFlag = &flag
	}
	return resp
}

func ToAppealResponses(appeals []*entity.Appeal) []AppealResponse {
	result := make([]AppealResponse, 0, len(appeals))
	for _, a := range appeals {
		result = append(result, ToAppealResponse(a))
	}
	return result
}

type InsightResponse struct {
	AppealID  uuid.UUID `json:"appealId"`
	Text      string    `json:"text"`
	Available bool      `json:"available"`
}

func ToInsightResponse(appealID uuid.UUID, insight appeal.Insight) InsightResponse {
	return InsightResponse{AppealID: appealID, Text: insight.Text, Available: insight.Available}
}

// SnapshotMessage отправляется клиенту живой ленты по websocket.
type SnapshotMessage struct {
	Type  string           `json:"type"`
	Data  []AppealResponse `json:"data"`
	Error *SnapshotError   `json:"error,omitempty"`
}

type SnapshotError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
