// Package xconf 提供配置加载、反序列化和热重载，基于 koanf 实现。
//
// xconf 是最小化的配置加载器：
//   - 工厂函数：[New]（文件）、[NewFromBytes]（字节数据，如 K8s ConfigMap）
//   - Client() 暴露底层 koanf 实例，Unmarshal 基于 mapstructure，支持 "10s" 这类时长字符串
//   - Reload 并发安全，解析失败时保留旧配置
//   - [Watch] 基于 fsnotify 监视配置文件，内置防抖，支持编辑器的原子保存
//
// # 服务配置
//
// [ServiceConfig] 是 xreqctxd 的配置结构，[LoadServiceConfig] 在 [DefaultServiceConfig]
// 之上反序列化并校验；[LogConfig.LogBuilder] 将日志配置转换为 xlog.Builder。
//
// # 支持的格式
//
// YAML（.yaml, .yml）与 JSON（.json）。
package xconf
