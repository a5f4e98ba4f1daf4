// Package handler 按业务域划分 HTTP Handler，子包 hotel 承载客人、客房与预订接口。
//
// 文档生成：swag init -g cmd/hotel-api/main.go --dir ./,./internal/handler
package handler
