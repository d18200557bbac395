package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Player lifecycle (info)
		"%s %s (%s)":                         "%s %s (%s)",
		"Playing %s":                         "%s を再生中",
		"Presented %d frames, dropped %d, %d loops": "%d フレームを表示, %d フレームを破棄, %d 回ループ",
		"Player stopped (%s)":                "プレイヤーを停止しました (%s)",
		"Shutdown requested":                 "終了が要求されました",
		"Quit requested":                     "終了が要求されました",
		"Escape pressed":                     "Escape キーが押されました",
		"Quit with %s":                       "終了します (%s)",
		"Initialization failed: %v":          "初期化に失敗しました: %v",
		"Render failed: %v":                  "描画に失敗しました: %v",
		"Teardown: %v":                       "終了処理: %v",

		// Window and headless surface
		"Window %dx%d (fullscreen=%v, vsync=%v)": "ウィンドウ %dx%d (フルスクリーン=%v, 垂直同期=%v)",
		"Headless surface %dx%d at %d Hz":        "ヘッドレス描画面 %dx%d (%d Hz)",
		"Failed to hide cursor: %v":              "カーソルを非表示にできませんでした: %v",
		"Created %s texture %dx%d":               "%s テクスチャを作成しました %dx%d",
		"Failed to create texture %dx%d: %v":     "テクスチャ %dx%d を作成できませんでした: %v",
		"Failed to update texture: %v":           "テクスチャを更新できませんでした: %v",
		"Failed to destroy texture: %v":          "テクスチャを破棄できませんでした: %v",
		"Failed to save snapshot: %v":            "スナップショットを保存できませんでした: %v",

		// Scheduling
		"Dropped late frame at %d ms":     "遅延フレームを破棄しました (%d ms)",
		"Stream restarted (loop %d)":      "ストリームを先頭から再開しました (ループ %d)",
		"Failed to restart stream: %v":    "ストリームを再開できませんでした: %v",
		"Failed to release frame: %v":     "フレームを解放できませんでした: %v",
		"Failed to release audio packet: %v": "音声パケットを解放できませんでした: %v",

		// Audio
		"Audio: %d ch, %d Hz":                      "音声: %d ch, %d Hz",
		"Audio device open: %d ch, %d Hz":          "音声デバイスを開きました: %d ch, %d Hz",
		"Failed to set audio format %d ch %d Hz: %v": "音声フォーマット %d ch %d Hz を設定できませんでした: %v",
		"Failed to start audio playback: %v":       "音声の再生を開始できませんでした: %v",
		"Failed to queue audio: %v":                "音声をキューに追加できませんでした: %v",
		"Failed to flush audio: %v":                "音声キューを破棄できませんでした: %v",
		"Short audio packet at %d ms: %d of %d bytes": "%d ms の音声パケットが不足しています: %d / %d バイト",

		// Decode engine and session
		"Stream: %s %s %dx%d, audio=%v (%s %d ch %d Hz)": "ストリーム: %s %s %dx%d, 音声=%v (%s %d ch %d Hz)",
		"Ignoring audio track with unknown format":       "形式が不明な音声トラックを無視します",
		"Decode session started (%.0f fps, %s, %d threads)": "デコードを開始しました (%.0f fps, %s, %d スレッド)",
		"Decode session stopped":                 "デコードを停止しました",
		"Decode pass started at %d ms":           "%d ms からデコードパスを開始しました",
		"Decode pass finished":                   "デコードパスが終了しました",
		"Decoder exited with error: %v":          "デコーダーがエラーで終了しました: %v",
		"Stream fault, ending decode pass: %v":   "ストリームの読み込みに失敗したため、デコードパスを終了します: %v",
		"Failed to close stream: %v":             "ストリームを閉じられませんでした: %v",

		// Memory
		"Out of memory: %d bytes requested, %d of %d in use": "メモリ不足: %d バイトを要求, 使用中 %d / %d",
	})
}
