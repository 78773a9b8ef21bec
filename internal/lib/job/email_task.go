package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcome          = "email:welcome"
	TaskPasswordRecovery = "email:password_recovery"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type WelcomeEmailPayload struct {
	To string `json:"to"`
}

type PasswordRecoveryPayload struct {
	To   string `json:"to"`
	Link string `json:"link"`
}

func NewWelcomeEmailTask(to string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{To: to})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewPasswordRecoveryTask goes to the critical queue; the link is useless
// once the reset expires.
func NewPasswordRecoveryTask(to, link string) (*asynq.Task, error) {
	payload, err := json.Marshal(PasswordRecoveryPayload{To: to, Link: link})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskPasswordRecovery,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
	), nil
}
