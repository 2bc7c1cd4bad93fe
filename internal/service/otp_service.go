package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Password reset errors.
var (
	ErrOTPInvalid     = errors.New("invalid or expired OTP")
	ErrOTPMaxAttempts = errors.New("too many failed OTP attempts")
	ErrTicketInvalid  = errors.New("invalid or expired reset ticket")
)

// maxOTPAttempts bounds verification tries per issued code.
const maxOTPAttempts = 5

// resetTicketTTL is how long a verified-OTP ticket stays redeemable.
const resetTicketTTL = 15 * time.Minute

// OTPService manages the email OTP password reset flow. Codes, attempt
// counters and reset tickets all live in Redis under their own TTLs.
type OTPService struct {
	cfg *config.Config
	rdb *redis.Client
}

// NewOTPService creates a new OTPService.
func NewOTPService(cfg *config.Config, rdb *redis.Client) *OTPService {
	return &OTPService{cfg: cfg, rdb: rdb}
}

// Issue generates a six-digit code for the email and stores it with the
// configured expiry. Issuing a new code replaces any outstanding one and
// resets the attempt counter.
func (s *OTPService) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	otp := fmt.Sprintf("%06d", n.Int64())

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.ResetOTPKey(email), otp, s.cfg.OTPExpiry)
	pipe.Del(ctx, config.CacheKey.ResetOTPAttemptsKey(email))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return otp, nil
}

// Verify checks a submitted code. On success the code is consumed and a
// one-shot reset ticket is returned. Each failure bumps the attempt counter;
// past the limit the code is revoked outright.
func (s *OTPService) Verify(ctx context.Context, email, otp string) (string, error) {
	otpKey := config.CacheKey.ResetOTPKey(email)
	stored, err := s.rdb.Get(ctx, otpKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrOTPInvalid
		}
		return "", fmt.Errorf("check otp: %w", err)
	}

	if stored != otp {
		attemptsKey := config.CacheKey.ResetOTPAttemptsKey(email)
		attempts, err := s.rdb.Incr(ctx, attemptsKey).Result()
		if err != nil {
			return "", fmt.Errorf("count attempt: %w", err)
		}
		s.rdb.Expire(ctx, attemptsKey, s.cfg.OTPExpiry)
		if attempts >= maxOTPAttempts {
			s.rdb.Del(ctx, otpKey, attemptsKey)
			return "", ErrOTPMaxAttempts
		}
		return "", ErrOTPInvalid
	}

	ticket := uuid.New().String()
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, otpKey, config.CacheKey.ResetOTPAttemptsKey(email))
	pipe.Set(ctx, config.CacheKey.ResetTicketKey(email), ticket, resetTicketTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store ticket: %w", err)
	}
	return ticket, nil
}

// Redeem consumes a reset ticket, allowing exactly one password change per
// verified OTP.
func (s *OTPService) Redeem(ctx context.Context, email, ticket string) error {
	key := config.CacheKey.ResetTicketKey(email)
	stored, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrTicketInvalid
		}
		return fmt.Errorf("check ticket: %w", err)
	}
	if stored != ticket {
		return ErrTicketInvalid
	}
	return s.rdb.Del(ctx, key).Err()
}
