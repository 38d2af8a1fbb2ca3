package xrun

import "errors"

var (
	// ErrNilFunc 服务函数为 nil
	ErrNilFunc = errors.New("xrun: nil service func")

	// ErrNilServer Serve 收到 nil *http.Server
	ErrNilServer = errors.New("xrun: nil http server")

	// ErrNilListener Serve 收到 nil net.Listener
	ErrNilListener = errors.New("xrun: nil listener")
)
