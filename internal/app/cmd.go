package app

import (
	"fmt"
	"strings"
)

// Command はearshelfの起動モード。
type Command string

const (
	// CommandServe はAPIサーバー（カタログ・ライブラリ・再生位置API、メディア配信）。
	CommandServe Command = "serve"
	// CommandWorker は期限切れセッションの定期削除。
	CommandWorker Command = "worker"
	// CommandMigrate は埋め込みマイグレーションの適用。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中サーバーの/healthを叩く。distrolessのHEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
)

// commands は使用方法の表示順。
var commands = []struct {
	cmd  Command
	desc string
}{
	{CommandServe, "start the HTTP API server (default)"},
	{CommandWorker, "run the expired-session cleanup worker"},
	{CommandMigrate, "apply database migrations and exit"},
	{CommandHealthcheck, "check /health on SERVER_PORT and exit"},
}

// ParseCommand は先頭引数をサブコマンドとして解釈する。
// 引数なしはCommandServe。未知のサブコマンドは使用方法付きのエラーを返す。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}
	for _, c := range commands {
		if string(c.cmd) == args[0] {
			return c.cmd, nil
		}
	}
	return "", fmt.Errorf("unknown command %q\n%s", args[0], Usage())
}

// Usage はサブコマンド一覧を返す。
func Usage() string {
	var b strings.Builder
	b.WriteString("usage: earshelf [command]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-12s %s\n", c.cmd, c.desc)
	}
	return b.String()
}
