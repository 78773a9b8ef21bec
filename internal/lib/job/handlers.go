package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().Str("type", "welcome").Str("to", p.To).Logger()
	log.Info().Msg("processing welcome email task")

	if err := j.mailer.SendWelcomeEmail(p.To); err != nil {
		log.Error().Err(err).Msg("failed to send welcome email")
		return err
	}

	log.Info().Msg("sent welcome email")
	return nil
}

func (j *JobService) handlePasswordRecoveryTask(ctx context.Context, t *asynq.Task) error {
	var p PasswordRecoveryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal password recovery payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().Str("type", "password_recovery").Str("to", p.To).Logger()
	log.Info().Msg("processing password recovery task")

	if err := j.mailer.SendPasswordRecoveryEmail(p.To, p.Link); err != nil {
		log.Error().Err(err).Msg("failed to send password recovery email")
		return err
	}

	log.Info().Msg("sent password recovery email")
	return nil
}
