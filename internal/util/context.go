package util

import (
	"github.com/gin-gonic/gin"

	"github.com/devmatch-io/devmatch/dao/model"
)

const (
	UserIDKey      = "x-user-id"
	UsernameKey    = "x-user-name"
	DeveloperIDKey = "x-developer-id"
	RoleKey        = "x-role"
)

func SetJWTContext(c *gin.Context, msg JWTMessage) {
	c.Set(UserIDKey, msg.UserID)
	c.Set(UsernameKey, msg.Username)
	c.Set(DeveloperIDKey, msg.DeveloperID)
	c.Set(RoleKey, msg.Role)
}

func GetToken(ctx *gin.Context) JWTMessage {
	var msg JWTMessage
	msg.UserID = ctx.GetUint(UserIDKey)
	msg.Username = ctx.GetString(UsernameKey)
	msg.DeveloperID = ctx.GetUint(DeveloperIDKey)

	role, _ := ctx.Get(RoleKey)
	msg.Role, _ = role.(model.Role)
	return msg
}
