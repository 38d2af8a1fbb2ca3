// Package lifecycle 收纳进程生命周期相关的包。
package lifecycle
