// Command libadmin runs the library admin console and its helper commands.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

// @title                      libadmin
// @version                    1.0
// @description                图书馆管理控制台的 BFF 接口
// @BasePath                   /
// @securityDefinitions.apikey SessionCookie
// @in                         header
// @name                       Cookie
// @description                登录后下发的 libadmin_session 会话Cookie
func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
