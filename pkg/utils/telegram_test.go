package utils

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

func signedInitData(authDate time.Time, user string) string {
	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("query_id", "AAHdF6IQAAAAAN0XohDhrOrc")
	values.Set("user", user)
	values.Set("hash", SignInitData(values, testBotToken))
	return values.Encode()
}

func TestValidateInitData(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	initData := signedInitData(now.Add(-time.Minute), `{"id":777,"first_name":"Anna","username":"anna","language_code":"ru"}`)

	user, err := ValidateInitData(initData, testBotToken, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, int64(777), user.ID)
	assert.Equal(t, "Anna", user.FirstName)
	assert.Equal(t, "ru", user.LanguageCode)
}

func TestValidateInitData_WrongToken(t *testing.T) {
	now := time.Now()
	initData := signedInitData(now, `{"id":777}`)

	_, err := ValidateInitData(initData, "other:token", time.Hour, now)
	assert.ErrorIs(t, err, ErrInitDataHash)
}

func TestValidateInitData_Tampered(t *testing.T) {
	now := time.Now()
	values, err := url.ParseQuery(signedInitData(now, `{"id":777}`))
	require.NoError(t, err)
	values.Set("user", `{"id":1}`)

	_, err = ValidateInitData(values.Encode(), testBotToken, time.Hour, now)
	assert.ErrorIs(t, err, ErrInitDataHash)
}

func TestValidateInitData_Expired(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	initData := signedInitData(now.Add(-25*time.Hour), `{"id":777}`)

	_, err := ValidateInitData(initData, testBotToken, 24*time.Hour, now)
	assert.ErrorIs(t, err, ErrInitDataExpired)

	// freshness check disabled
	_, err = ValidateInitData(initData, testBotToken, 0, now)
	assert.NoError(t, err)
}

func TestValidateInitData_Malformed(t *testing.T) {
	now := time.Now()

	_, err := ValidateInitData("auth_date=1&user=%7B%7D", testBotToken, 0, now)
	assert.Error(t, err, "missing hash")

	_, err = ValidateInitData(signedInitData(now, `{"first_name":"NoID"}`), testBotToken, 0, now)
	assert.Error(t, err)

	_, err = ValidateInitData(signedInitData(now, `not json`), testBotToken, 0, now)
	assert.Error(t, err)
}
