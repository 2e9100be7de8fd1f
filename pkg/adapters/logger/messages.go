package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Engine lifecycle (info)
		"replay capture enabled":                  "リプレイキャプチャを有効にしました",
		"replay capture disabled, cache dropped":  "リプレイキャプチャを無効にし、キャッシュを破棄しました",
		"saving replays for %d scenes":            "%d シーンのリプレイを保存中",
		"replay engine closed":                    "リプレイエンジンを終了しました",
		"replay %s: scene %s":                     "リプレイ %s: シーン %s",
		"replay %s finished":                      "リプレイ %s が完了しました",

		// Module surface
		"Per-scene instant replay capture and playback": "シーンごとのインスタントリプレイのキャプチャと再生",
		"replay module %s loaded: output directory %s":  "リプレイモジュール %s をロードしました: 出力ディレクトリ %s",
		"Replay Capture":                                "リプレイキャプチャ",

		// Capture component
		"capture started: video tap plus %d audio taps": "キャプチャ開始: 映像タップと %d 個のオーディオタップ",
		"capture stopped":                               "キャプチャを停止しました",
		"audio tap rejected for %s: %v":                 "%s のオーディオタップが拒否されました: %v",

		// Playback component
		"live replay of %s: %d video / %d audio frames":           "%s のライブリプレイ: 映像 %d / 音声 %d フレーム",
		"live replay of %s finished":                              "%s のライブリプレイが完了しました",
		"saving replay of %s to %s: %d video / %d audio frames":   "%s のリプレイを %s に保存中: 映像 %d / 音声 %d フレーム",
		"replay of %s saved to %s":                                "%s のリプレイを %s に保存しました",

		// Scene component
		"created scene %s":           "シーン %s を作成しました",
		"created sink %s in scene %s": "シンク %s をシーン %s に作成しました",

		// Warnings
		"malformed ReplayScene payload: %v": "不正な ReplayScene ペイロード: %v",
	})
}
