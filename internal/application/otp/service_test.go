package otp

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/VaishnavKrishnanP/EchoSpace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, rec *domain.OTPRecord) error {
	return m.Called(ctx, rec).Error(0)
}
func (m *mockOTPStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	args := m.Called(ctx, email)
	if rec, _ := args.Get(0).(*domain.OTPRecord); rec != nil {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockOTPStore) IncrementAttempts(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}
func (m *mockOTPStore) MarkVerified(ctx context.Context, email string, at time.Time) error {
	return m.Called(ctx, email, at).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, htmlBody string) error {
	return m.Called(to, subject, htmlBody).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(email string, verifiedAt time.Time) (string, error) {
	args := m.Called(email, verifiedAt)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newTestService(store *mockOTPStore, ml *mockMailer, signer TokenSigner) Service {
	return NewService(ServiceDeps{
		OTPRepo:     store,
		Mailer:      ml,
		TokenSigner: signer,
		CodeLength:  6,
		TTL:         5 * time.Minute,
		MaxAttempts: 5,
	})
}

func liveRecord(email, code string, attempts int) *domain.OTPRecord {
	now := time.Now().UTC()
	return &domain.OTPRecord{
		Email:     email,
		Code:      code,
		Attempts:  attempts,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute).Unix(),
	}
}

// --- Generate ---

func TestGenerate_MissingEmail(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	err := svc.Generate(context.Background(), domain.GenerateOTPRequest{Email: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestGenerate_HappyPath(t *testing.T) {
	store := &mockOTPStore{}
	ml := &mockMailer{}

	sixDigits := regexp.MustCompile(`^[1-9]\d{5}$`)
	var storedCode string
	store.On("Put", mock.Anything, mock.MatchedBy(func(rec *domain.OTPRecord) bool {
		storedCode = rec.Code
		return rec.Email == "a@x.com" &&
			rec.Attempts == 0 &&
			!rec.Verified &&
			sixDigits.MatchString(rec.Code) &&
			rec.ExpiresAt > time.Now().Unix()
	})).Return(nil)
	ml.On("SendEmail", "a@x.com", "Your EchoSpace Verification Code", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, storedCode)
	})).Return(nil)

	svc := newTestService(store, ml, nil)
	err := svc.Generate(context.Background(), domain.GenerateOTPRequest{Email: "a@x.com"})

	require.NoError(t, err)
	store.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestGenerate_NormalizesEmail(t *testing.T) {
	store := &mockOTPStore{}
	ml := &mockMailer{}
	store.On("Put", mock.Anything, mock.MatchedBy(func(rec *domain.OTPRecord) bool {
		return rec.Email == "a@x.com"
	})).Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(store, ml, nil)
	err := svc.Generate(context.Background(), domain.GenerateOTPRequest{Email: "  A@X.Com "})

	require.NoError(t, err)
	store.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestGenerate_StoreFailure_ReturnsInternal(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := newTestService(store, nil, nil)
	err := svc.Generate(context.Background(), domain.GenerateOTPRequest{Email: "a@x.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInternal))
}

func TestGenerate_SendFailure_ReturnsInternal_AfterRecordPersisted(t *testing.T) {
	store := &mockOTPStore{}
	ml := &mockMailer{}
	store.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(errors.New("smtp refused"))

	svc := newTestService(store, ml, nil)
	err := svc.Generate(context.Background(), domain.GenerateOTPRequest{Email: "a@x.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInternal))
	// The record was already written when the send failed.
	store.AssertCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Verify ---

func TestVerify_MissingCode(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, err := svc.Verify(context.Background(), domain.VerifyOTPRequest{Email: "a@x.com", Code: "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestVerify_NoRecord_ReturnsNotFound(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(store, nil, nil)
	_, err := svc.Verify(context.Background(), domain.VerifyOTPRequest{Email: "a@x.com", Code: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerify_Expired_DeletesRecord(t *testing.T) {
	store := &mockOTPStore{}
	rec := liveRecord("a@x.com", "123456", 0)
	rec.ExpiresAt = time.Now().Add(-1 * time.Minute).Unix()
	store.On("Get", mock.Anything, "a@x.com").Return(rec, nil)
	store.On("Delete", mock.Anything, "a@x.com").Return(nil)

	svc := newTestService(store, nil, nil)
	// Correct code: expiry is checked before the match, so it must still fail.
	_, err := svc.Verify(context.Background(), domain.VerifyOTPRequest{Email: "a@x.com", Code: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExpired))
	store.AssertCalled(t, "Delete", mock.Anything, "a@x.com")
	store.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_WrongCode_IncrementsAttempts(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, "a@x.com").Return(liveRecord("a@x.com", "123456", 2), nil)
	store.On("IncrementAttempts", mock.Anything, "a@x.com").Return(3, nil)

	svc := newTestService(store, nil, nil)
	_, err := svc.Verify(context.Background(), domain.VerifyOTPRequest{Email: "a@x.com", Code: "000000"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerify_WrongCode_FifthAttempt_ExhaustsRecord(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, "a@x.com").Return(liveRecord("a@x.com", "123456", 4), nil)
	store.On("IncrementAttempts", mock.Anything, "a@x.com").Return(5, nil)
	store.On("Delete", mock.Anything, "a@x.com").Return(nil)

	svc := newTestService(store, nil, nil)
	_, err := svc.Verify(context.Background(), domain.VerifyOTPRequest{Email: "a@x.com", Code: "000000"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	store.AssertCalled(t, "Delete", mock.Anything, "a@x.com")
}

func TestVerify_WrongCode_RecordGoneDuringIncrement(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, "a@x.com").Return(liveRecord("a@x.com", "123456", 0), nil)
	store.On("IncrementAttempts", mock.Anything, "a@x.com").Return(0, domain.ErrNotFound)

	svc := newTestService(store, nil, nil)
	_, err := svc.Verify(context.Background(), domain.VerifyOTPRequest{Email: "a@x.com", Code: "000000"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerify_HappyPath_MarksVerified(t *testing.T) {
	store := &mockOTPStore{}
	store.On("Get", mock.Anything, "a@x.com").Return(liveRecord("a@x.com", "123456", 3), nil)
	store.On("MarkVerified", mock.Anything, "a@x.com", mock.AnythingOfType("time.Time")).Return(nil)

	svc := newTestService(store, nil, nil)
	result, err := svc.Verify(context.Background(), domain.VerifyOTPRequest{Email: " A@X.com ", Code: " 123456 "})

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.Email)
	assert.Empty(t, result.Token)
	// Success retains the record as proof of completed verification.
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestVerify_HappyPath_SignsToken(t *testing.T) {
	store := &mockOTPStore{}
	signer := &mockSigner{}
	store.On("Get", mock.Anything, "a@x.com").Return(liveRecord("a@x.com", "123456", 0), nil)
	store.On("MarkVerified", mock.Anything, "a@x.com", mock.AnythingOfType("time.Time")).Return(nil)
	signer.On("Sign", "a@x.com", mock.AnythingOfType("time.Time")).Return("verification-token", nil)

	svc := newTestService(store, nil, signer)
	result, err := svc.Verify(context.Background(), domain.VerifyOTPRequest{Email: "a@x.com", Code: "123456"})

	require.NoError(t, err)
	assert.Equal(t, "verification-token", result.Token)
	signer.AssertExpectations(t)
}

func TestRandomCode_SixDigitRange(t *testing.T) {
	sixDigits := regexp.MustCompile(`^[1-9]\d{5}$`)
	for i := 0; i < 100; i++ {
		code, err := randomCode(6)
		require.NoError(t, err)
		assert.True(t, sixDigits.MatchString(code), "code %q out of range", code)
	}
}
