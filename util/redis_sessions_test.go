package util

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"github.com/rakibhasan/carebook/config"
)

func setupRedisMock(t *testing.T) redismock.ClientMock {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(rdb)
	t.Cleanup(func() { config.ResetRedisClientForTest() })
	return mock
}

func TestAddSessionToUserSet(t *testing.T) {
	mock := setupRedisMock(t)

	mock.ExpectSAdd("user_sessions:7", "tok-1").SetVal(1)
	mock.ExpectExpire("user_sessions:7", time.Hour).SetVal(true)

	assert.NoError(t, AddSessionToUserSet(7, "tok-1", time.Hour))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSessionTokenFromUserSet_DeletesEmptySet(t *testing.T) {
	mock := setupRedisMock(t)

	mock.ExpectSRem("user_sessions:7", "tok-1").SetVal(1)
	mock.ExpectSCard("user_sessions:7").SetVal(0)
	mock.ExpectDel("user_sessions:7").SetVal(1)

	assert.NoError(t, RemoveSessionTokenFromUserSet(7, "tok-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSessionTokenFromUserSet_KeepsNonEmptySet(t *testing.T) {
	mock := setupRedisMock(t)

	mock.ExpectSRem("user_sessions:7", "tok-1").SetVal(1)
	mock.ExpectSCard("user_sessions:7").SetVal(2)

	assert.NoError(t, RemoveSessionTokenFromUserSet(7, "tok-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateUserSessions_DropsAllTokens(t *testing.T) {
	mock := setupRedisMock(t)

	mock.ExpectSMembers("user_sessions:7").SetVal([]string{"tok-1", "tok-2"})
	mock.ExpectDel("session:tok-1").SetVal(1)
	mock.ExpectDel("session:tok-2").SetVal(1)
	mock.ExpectDel("user_sessions:7").SetVal(1)

	assert.NoError(t, InvalidateUserSessions(7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionHelpers_NoopWithoutRedis(t *testing.T) {
	config.ResetRedisClientForTest()
	assert.NoError(t, AddSessionToUserSet(7, "tok", time.Hour))
	assert.NoError(t, RemoveSessionTokenFromUserSet(7, "tok"))
	assert.NoError(t, InvalidateUserSessions(7))
}
