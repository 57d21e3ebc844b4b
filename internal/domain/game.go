// Package domain holds the data model shared by the patch engine: the located
// game, the patch bundle and its structural configuration, and the run report.
package domain

// GameInfo describes a located RPG Maker installation.
// It is produced by the locator and never modified by the engine.
type GameInfo struct {
	GameDir   string `json:"gameDir"`
	ExePath   string `json:"exePath"`
	DataPath  string `json:"dataPath"`
	JsPath    string `json:"jsPath"`
	ImgPath   string `json:"imgPath"`
	GameTitle string `json:"gameTitle"`
}
