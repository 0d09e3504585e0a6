// Command devconnect は開発者向けSNS APIサーバーを起動する。
//
// サブコマンド:
//
//	serve             APIサーバーを起動する（既定）
//	migrate [down N]  スキーマのマイグレーションを適用または巻き戻す
//	healthcheck       /health を叩いて終了コードで結果を返す
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/devconnect/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "devconnect: %v\n", err)
		os.Exit(1)
	}
}
