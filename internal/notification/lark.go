package notification

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// LarkConfig holds Lark app credentials
type LarkConfig struct {
	AppID     string
	AppSecret string
}

// LarkSender delivers workflow notices as Lark messages addressed to the
// requestor's email.
type LarkSender struct {
	client *lark.Client
	logger *zap.Logger
}

// NewLarkSender creates a Lark-backed sender
func NewLarkSender(cfg LarkConfig, logger *zap.Logger) *LarkSender {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &LarkSender{
		client: client,
		logger: logger,
	}
}

// SendApprovalNotification tells the requestor their request moved
func (s *LarkSender) SendApprovalNotification(ctx context.Context, notice ApprovalNotice) error {
	text := fmt.Sprintf("Your %s request %s is now %q (actioned by %s).",
		notice.EntityType, notice.EntityID, notice.NewStatus, notice.ApproverName)
	if notice.Comments != "" {
		text += fmt.Sprintf(" Comment: %s", notice.Comments)
	}
	return s.sendText(ctx, notice.RequestorEmail, text)
}

// SendSubmissionNotification confirms the request entered the approval chain
func (s *LarkSender) SendSubmissionNotification(ctx context.Context, notice SubmissionNotice) error {
	text := fmt.Sprintf("Your %s request %s has been submitted for approval (%s department).",
		notice.EntityType, notice.EntityID, notice.Department)
	return s.sendText(ctx, notice.RequestorEmail, text)
}

func (s *LarkSender) sendText(ctx context.Context, email, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType("email").
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(email).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := s.client.Im.Message.Create(ctx, req)
	if err != nil {
		s.logger.Error("Failed to send message", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		s.logger.Error("Lark API returned failure",
			zap.String("email", email),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	s.logger.Info("Notification sent",
		zap.String("email", email),
		zap.String("message_id", messageID))

	return nil
}
