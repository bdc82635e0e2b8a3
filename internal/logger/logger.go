// Package logger はアプリ全体で使うzapロガー。
package logger

import "go.uber.org/zap"

// Log はグローバルロガー。main で Init してから使う。
var Log = zap.NewNop()

// Init はロガーを設定する。devはconsole出力、それ以外はJSON。
func Init(goEnv string) {
	var (
		l   *zap.Logger
		err error
	)
	if goEnv == "dev" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	Log = l
}

// Sync は終了時にバッファを吐き出す。
func Sync() {
	_ = Log.Sync()
}
