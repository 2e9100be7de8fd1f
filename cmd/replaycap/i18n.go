// Package main provides localization for the replaycap CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Commands
		"Run the replay engine inside a simulated host": "シミュレートされたホストでリプレイエンジンを実行",
		"Summarize the tracks of a saved replay file":   "保存されたリプレイファイルのトラックを要約",

		// Flags
		"YAML config file path":                                "YAML設定ファイルのパス",
		"Replay output directory":                              "リプレイの出力ディレクトリ",
		"Simulation length in seconds":                         "シミュレーション時間（秒）",
		"HTTP bridge listen address (empty: disabled)":         "HTTPブリッジの待ち受けアドレス（空: 無効）",
		"Trigger an instant replay halfway through the run":    "実行の途中でインスタントリプレイを実行",
		"Switch the program scene every N seconds (0: never)":  "N秒ごとに番組シーンを切り替え（0: なし）",
		"Skip SaveAllReplays at the end of the run":            "実行終了時のSaveAllReplaysをスキップ",
		"Write a Markdown session report to this path":         "Markdownのセッションレポートをこのパスに書き込み",
		"Log level (debug, info, warn, error)":                 "ログレベル（debug, info, warn, error）",
		"Emit logs as JSON":                                    "ログをJSONで出力",
		"Suppress all log output":                              "すべてのログ出力を抑制",

		// Run command messages
		"Interrupted, shutting down...":    "中断されました。シャットダウン中...",
		"simulation finished: %s":          "シミュレーションが完了しました: %s",
		"listening on %s":                  "%s で待ち受け中",
		"Failed to load config: %s":        "設定の読み込みに失敗しました: %s",
		"Failed to load replay module: %s": "リプレイモジュールのロードに失敗しました: %s",
		"report written to %s":             "レポートを %s に書き込みました",

		// Inspect command messages
		"inspect requires exactly one replay file path": "inspectにはリプレイファイルのパスを1つ指定してください",

		// Version
		"replaycap version %s": "replaycap バージョン %s",
	})
}
