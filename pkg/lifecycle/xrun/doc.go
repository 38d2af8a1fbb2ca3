// Package xrun 基于 errgroup 协调一组长期运行的服务。
//
// 任一服务返回错误或父 context 被取消时，其余服务都会收到取消信号；
// Wait 等待全部退出并返回第一个有意义的错误：
//
//	g, ctx := xrun.NewGroup(ctx, xrun.WithName("xreqctxd"), xrun.WithLogger(logger))
//	g.Go("config-watch", xrun.Background(w.StartAsync, w.Stop))
//	g.Go("http", xrun.Serve(srv, ln, 10*time.Second))
//	err := g.Wait()
//
// 由父 context 正常取消引起的退出不视为错误。信号处理交给调用方，
// 通常是 main 中的 signal.NotifyContext。
package xrun
