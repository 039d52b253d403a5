package model

import "time"

// Course は講座カタログの1エントリを表す。
// VideoURLは任意。設定される場合はhttp/httpsの公開URLのみ許可される。
type Course struct {
	ID          string
	Name        string
	Description string
	VideoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
