// Package main provides localization for the ornament CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Play a video file in a fullscreen loop": "動画ファイルをフルスクリーンでループ再生",

		// Flags
		"YAML configuration file":                        "YAML 設定ファイル",
		"Log level (debug, info, warn, error)":           "ログレベル (debug, info, warn, error)",
		"Suppress all log output":                        "ログ出力をすべて抑制",
		"Render offscreen without opening a window":      "ウィンドウを開かずにオフスクリーンで描画",
		"Directory for headless snapshots":               "ヘッドレス時のスナップショット保存先",
		"Decode audio without opening the output device": "出力デバイスを開かずに音声をデコード",

		// Version command
		"Show version information": "バージョン情報を表示",
		"ornament version %s":      "ornament バージョン %s",

		// Runtime
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Error: %v":                     "エラー: %v",
	})
}
