// File: internal/usecase/winback_uc.go
package usecase

import (
	"bytes"
	"context"
	"html/template"
	"net/mail"
	"time"

	"github.com/rs/zerolog"

	"subscription-retention-service/internal/domain/model"
	"subscription-retention-service/internal/domain/ports/adapter"
	"subscription-retention-service/internal/infra/metrics"
)

// WinbackUseCase composes and sends the single incentive email after a
// genuine cancellation. Each invocation creates a fresh coupon; email-send
// itself is not idempotent, which is a known gap of the at-least-once job
// delivery.
type WinbackUseCase struct {
	settings adapter.SettingsProvider
	coupons  couponCreator
	mailer   adapter.Mailer
	tracker  *TrackerUseCase
	shopName string
	shopURL  string
	log      *zerolog.Logger

	now func() time.Time
}

// couponCreator is the slice of CouponRepository this use case needs.
type couponCreator interface {
	Create(ctx context.Context, c *model.Coupon) error
}

func NewWinbackUseCase(settings adapter.SettingsProvider, coupons couponCreator, mailer adapter.Mailer, tracker *TrackerUseCase, shopName, shopURL string, logger *zerolog.Logger) *WinbackUseCase {
	compLog := logger.With().Str("component", "WinbackUC").Logger()
	return &WinbackUseCase{
		settings: settings,
		coupons:  coupons,
		mailer:   mailer,
		tracker:  tracker,
		shopName: shopName,
		shopURL:  shopURL,
		log:      &compLog,
		now:      time.Now,
	}
}

// Send issues a one-use coupon and emails it. Silently skips invalid emails
// and disabled win-back, matching how a late-firing job should behave after
// the operator turns the feature off.
func (uc *WinbackUseCase) Send(ctx context.Context, subscriptionID, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		uc.log.Warn().Str("subscription_id", subscriptionID).Msg("winback skipped: invalid email")
		return nil
	}
	s := uc.settings.Snapshot()
	if !s.WinbackEnabled {
		return nil
	}

	coupon := model.NewWinbackCoupon(subscriptionID, email, s.DiscountAmount, s.DiscountType, uc.now())
	if err := uc.coupons.Create(ctx, &coupon); err != nil {
		return err
	}

	label := s.DiscountType.Label(s.DiscountAmount) + " off"
	body, err := uc.renderEmail(label, coupon.Code)
	if err != nil {
		return err
	}
	if err := uc.mailer.Send(ctx, email, s.WinbackSubject, body); err != nil {
		return err
	}

	metrics.IncWinbackEmail()
	uc.tracker.Track(ctx, subscriptionID, 0, model.EventWinbackSent, "", 0)
	return nil
}

func (uc *WinbackUseCase) renderEmail(discountLabel, couponCode string) (string, error) {
	var buf bytes.Buffer
	err := winbackTmpl.Execute(&buf, struct {
		StoreName     string
		DiscountLabel string
		CouponCode    string
		ShopURL       string
	}{uc.shopName, discountLabel, couponCode, uc.shopURL})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var winbackTmpl = template.Must(template.New("winback").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 0; }
  .wrap { max-width: 560px; margin: 40px auto; background: #fff; border-radius: 12px; overflow: hidden; }
  .header { background: linear-gradient(135deg, #667eea, #764ba2); padding: 40px 32px; text-align: center; color: #fff; }
  .body { padding: 36px 32px; color: #333; }
  .coupon-box { background: #f0f4ff; border: 2px dashed #667eea; border-radius: 10px; padding: 20px; text-align: center; margin: 24px 0; }
  .coupon-box .code { font-size: 28px; font-weight: 800; letter-spacing: 3px; color: #4f46e5; }
  .cta { display: block; text-align: center; background: #667eea; color: #fff !important; padding: 16px 32px; border-radius: 8px; text-decoration: none; font-weight: 700; margin: 24px 0; }
  .footer { padding: 20px 32px; font-size: 12px; color: #aaa; text-align: center; border-top: 1px solid #f0f0f0; }
</style>
</head>
<body>
<div class="wrap">
  <div class="header">
    <h1>We miss you</h1>
    <p>It hasn't been the same since you left.</p>
  </div>
  <div class="body">
    <p>Hi there,</p>
    <p>We noticed you recently cancelled your subscription with <strong>{{.StoreName}}</strong>. We completely understand - life gets busy and priorities shift.</p>
    <p>But if there's any chance we could win you back, we'd love to offer you something special:</p>
    <div class="coupon-box">
      <div class="label">YOUR EXCLUSIVE DISCOUNT</div>
      <div class="code">{{.CouponCode}}</div>
      <div class="expiry">Valid for 14 days - One use only</div>
    </div>
    <p>Use code <strong>{{.CouponCode}}</strong> at checkout to get <strong>{{.DiscountLabel}}</strong> when you reactivate your subscription.</p>
    <a href="{{.ShopURL}}" class="cta">Reactivate My Subscription</a>
    <p>If there's anything we could have done better, we'd genuinely love to hear from you. Just reply to this email.</p>
    <p>Thank you for being a customer,<br><strong>{{.StoreName}}</strong></p>
  </div>
  <div class="footer">
    You're receiving this because you recently cancelled a subscription at {{.StoreName}}.
  </div>
</div>
</body>
</html>`))
