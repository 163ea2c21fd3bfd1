package queue

// 主题命名规范：fd.<域>.<动作>，保持稳定与向后兼容.
const (
	// TopicFileStored 文件已写盘且元数据记录已创建.
	TopicFileStored = "fd.file.stored"
	// TopicFileDeleted 元数据记录已删除，负载包含物理删除结果.
	TopicFileDeleted = "fd.file.deleted"
	// TopicFileOrphaned 清理任务发现（并可能删除）没有记录的文件或没有文件的记录.
	TopicFileOrphaned = "fd.file.orphaned"
)

// Topics 返回全部主题.
func Topics() []string {
	return []string{TopicFileStored, TopicFileDeleted, TopicFileOrphaned}
}
