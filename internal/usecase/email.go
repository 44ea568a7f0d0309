package usecase

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"sort"

	"github.com/skip2/go-qrcode"
)

type Email struct {
	To          []string
	From        string
	CC          []string
	BCC         []string
	Subject     string
	Body        string
	Attachments []EmailAttachment
}

type EmailAttachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// AssetQRCode renders the uid as a PNG, used for the sticker on the door
// controller.
func (u Usecase) AssetQRCode(ctx context.Context, uid string, size int) ([]byte, error) {
	if _, err := u.repo.GetAssetByUID(ctx, uid); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(uid, qrcode.Medium, size)
}

//go:embed templates/*
var templates embed.FS

type DigestItem struct {
	UID          string
	CustomerName string
	Phone        string
	Address      string
	WarrantyEnd  string
	Label        string
	QRCodeURL    string
}

type DigestEmailData struct {
	Title   string
	Date    string
	DueDays int
	Due     []DigestItem
	Expired int
	Stats   WarrantyStats
}

// BuildWarrantyDigest lists the assets whose warranty runs out within
// dueDays. ok is false when there is nothing to report.
func (u Usecase) BuildWarrantyDigest(ctx context.Context, dueDays int) (Email, bool, error) {
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}

	assets, err := u.repo.ListAssets(ctx)
	if err != nil {
		return Email{}, false, err
	}

	today := u.Today()
	stats := CountWarranty(assets, dueDays, today)
	due := classify(FilterAssets(assets, AssetFilter{
		Warranty: string(WarrantyDue),
		DueDays:  dueDays,
	}, today), dueDays, today)
	if len(due) == 0 {
		return Email{}, false, nil
	}

	// soonest first
	sort.SliceStable(due, func(i, j int) bool {
		return *due[i].Warranty.DaysLeft < *due[j].Warranty.DaysLeft
	})

	data := DigestEmailData{
		Title:   "Garanti bitişi yaklaşan kayıtlar",
		Date:    today.Format("02.01.2006"),
		DueDays: dueDays,
		Expired: stats.Expired,
		Stats:   stats,
	}
	for _, a := range due {
		qr, err := qrDataURL(a.UID)
		if err != nil {
			u.logger.WarnContext(ctx, "digest qr code skipped",
				"uid", a.UID,
				"err", err)
		}
		data.Due = append(data.Due, DigestItem{
			UID:          a.UID,
			CustomerName: a.CustomerName,
			Phone:        a.CustomerPhone,
			Address:      a.Address,
			WarrantyEnd:  a.WarrantyEnd.Format("02.01.2006"),
			Label:        a.Warranty.Label,
			QRCodeURL:    qr,
		})
	}

	body, err := buildDigestEmailBody(data)
	if err != nil {
		return Email{}, false, err
	}

	return Email{
		To:      u.digestRecipients,
		From:    u.mailFrom,
		Subject: fmt.Sprintf("Garanti özeti %s: %d kayıt", data.Date, len(data.Due)),
		Body:    body,
	}, true, nil
}

// qrDataURL inlines the uid QR code for the digest table.
func qrDataURL(uid string) (string, error) {
	png, err := qrcode.Encode(uid, qrcode.Low, 96)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// SendWarrantyDigest mails the digest to the configured recipients. It is a
// no-op when nobody is configured or nothing is due.
func (u Usecase) SendWarrantyDigest(ctx context.Context, dueDays int) error {
	if len(u.digestRecipients) == 0 {
		u.logger.InfoContext(ctx, "warranty digest skipped: no recipients")
		return nil
	}

	email, ok, err := u.BuildWarrantyDigest(ctx, dueDays)
	if err != nil {
		return err
	}
	if !ok {
		u.logger.InfoContext(ctx, "warranty digest skipped: nothing due")
		return nil
	}

	return u.mailer.SendEmail(ctx, email)
}

func buildDigestEmailBody(data DigestEmailData) (string, error) {
	tmpl, err := template.
		New("base.html").
		Funcs(template.FuncMap{
			"safeURL": func(s string) template.URL {
				return template.URL(s)
			},
		}).
		ParseFS(
			templates,
			"templates/base.html",
			"templates/warranty_digest.html",
		)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
