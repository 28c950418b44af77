package services

import (
	"context"
	"testing"
	"time"

	"github.com/yoockh/visaprep/internal/logger"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories/memory"
	"github.com/yoockh/visaprep/internal/utils"
)

func newAuth() AuthService {
	return NewAuthService(memory.NewUserRepo(), TokenConfig{Secret: "test-secret", Issuer: "visaprep", TTL: time.Hour}, logger.Discard())
}

func TestSignupAndLogin(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()
	profile := &models.UserProfile{VisaType: "H-1B", Country: "Philippines", Age: 29}

	res, err := svc.Signup(ctx, "ana@example.com", "pw123456", profile)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := utils.ParseToken("test-secret", "visaprep", res.Token)
	if err != nil || sub != res.UserID {
		t.Fatalf("token sub=%q err=%v", sub, err)
	}

	if _, err := svc.Signup(ctx, "ana@example.com", "other", profile); utils.HTTPStatus(err) != 409 {
		t.Errorf("duplicate email: %v", err)
	}

	login, err := svc.Login(ctx, "ana@example.com", "pw123456")
	if err != nil || login.UserID != res.UserID || login.Profile.VisaType != "H-1B" {
		t.Fatalf("login = %+v, %v", login, err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "wrong"); utils.HTTPStatus(err) != 401 {
		t.Errorf("bad password: %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "pw123456"); utils.HTTPStatus(err) != 401 {
		t.Errorf("unknown email: %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()
	if _, err := svc.Signup(ctx, "", "pw", &models.UserProfile{VisaType: "F-1", Country: "India"}); utils.HTTPStatus(err) != 400 {
		t.Errorf("missing email: %v", err)
	}
	if _, err := svc.Signup(ctx, "a@b.c", "pw", nil); utils.HTTPStatus(err) != 400 {
		t.Errorf("missing profile: %v", err)
	}
	if _, err := svc.Signup(ctx, "a@b.c", "pw", &models.UserProfile{VisaType: "F-1"}); utils.HTTPStatus(err) != 400 {
		t.Errorf("missing country: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()
	res, _ := svc.Signup(ctx, "b@example.com", "pw", &models.UserProfile{VisaType: "F-1", Country: "India"})

	updated, err := svc.UpdateProfile(ctx, res.UserID, &models.UserProfile{VisaType: "J-1", Country: "Brazil"})
	if err != nil || updated.VisaType != "J-1" {
		t.Fatalf("updated=%+v err=%v", updated, err)
	}
	u, _ := svc.Profile(ctx, res.UserID)
	if u.Profile.Country != "Brazil" {
		t.Errorf("profile = %+v", u.Profile)
	}
	if _, err := svc.UpdateProfile(ctx, "ghost", &models.UserProfile{VisaType: "J-1", Country: "Brazil"}); utils.HTTPStatus(err) != 404 {
		t.Errorf("unknown user: %v", err)
	}
	if _, err := svc.Profile(ctx, "ghost"); utils.HTTPStatus(err) != 404 {
		t.Errorf("unknown user profile: %v", err)
	}
}
