package notification

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/eduforge/platform/config"
	"github.com/eduforge/platform/internal/application"
	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/pkg/helpers"
	"github.com/eduforge/platform/pkg/mailer"
	tpl "github.com/eduforge/platform/pkg/mailer/templates"
)

// Gateway delivers identity emails by enqueueing jobs on RabbitMQ; the
// email worker renders and sends them through Mailgun. Every method is best
// effort: a publish failure is logged and reported, never escalated.
type Gateway struct {
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewGateway(pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *Gateway {
	return &Gateway{Pub: pub, Logger: logger, Cfg: cfg}
}

func (g *Gateway) baseData(a *entity.Account) tpl.EmailData {
	return tpl.EmailData{
		Name:       a.FullName(),
		Email:      a.Email,
		AppName:    g.Cfg.AppName,
		Company:    g.Cfg.CompanyName,
		LogoURL:    g.Cfg.LogoURL,
		SupportURL: g.Cfg.SupportURL,
	}
}

func (g *Gateway) publish(ctx context.Context, job mailer.EmailJob) bool {
	if g.Cfg != nil && !g.Cfg.MailSendEnabled {
		return false
	}
	if err := g.Pub.PublishJSON(ctx, job); err != nil {
		if g.Logger != nil {
			g.Logger.WithError(err).WithField("to", job.To).Warn("failed to enqueue email job")
		}
		return false
	}
	return true
}

func (g *Gateway) SendCode(ctx context.Context, kind application.CodeKind, a *entity.Account, code *entity.OneTimeCode) bool {
	name := tpl.VerificationCode
	switch kind {
	case application.CodeLoginMFA:
		name = tpl.LoginOTP
	case application.CodePasswordRst:
		name = tpl.ResetCode
	}
	data := g.baseData(a)
	data.Code = code.Value
	data = data.WithExpiry(code.ExpiresAt)
	return g.publish(ctx, mailer.EmailJob{To: a.Email, Template: name, Data: data})
}

func (g *Gateway) SendInstructorApprovalRequest(ctx context.Context, a *entity.Account) {
	data := g.baseData(a)
	data.CVURL = a.CVURL
	data.ProfessionCenter = a.ProfessionCenter
	g.publish(ctx, mailer.EmailJob{To: g.Cfg.AdminEmail, Template: tpl.ApprovalRequest, Data: data})
}

func (g *Gateway) SendApprovalDecision(ctx context.Context, a *entity.Account, approved bool) {
	data := g.baseData(a)
	data.Approved = approved
	g.publish(ctx, mailer.EmailJob{To: a.Email, Template: tpl.ApprovalDecision, Data: data})
}

var _ application.Notifier = (*Gateway)(nil)
