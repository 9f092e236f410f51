package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// ScoreModulePrefix 评分模块
	ScoreModulePrefix = "score"

	// EntityRequirement 岗位要求实体
	EntityRequirement = "requirement"
	// EntityLock 分布式锁实体
	EntityLock = "lock"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityTextDedupSet 解析文本去重集合实体
	EntityTextDedupSet = "text_dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"
	// EntityReport 评分报告实体
	EntityReport = "report"
	// EntityRetry 消费重试计数实体
	EntityRetry = "retry"

	// KeyJobRequirement 岗位要求缓存 (STRING, JSON序列化)
	// 格式: app:job:requirement:{jobID}
	KeyJobRequirement = AppPrefix + ":" + JobModulePrefix + ":" + EntityRequirement + ":%s"

	// KeyFileMD5Set 文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyTextMD5Set 解析文本MD5集合，用于内容级去重 (SET)
	// 格式: app:file:text_dedup_set
	KeyTextMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityTextDedupSet

	// KeyFileMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyScoreLock 单份简历评分的分布式锁 (STRING)
	// 格式: app:score:lock:{submissionUUID}
	KeyScoreLock = AppPrefix + ":" + ScoreModulePrefix + ":" + EntityLock + ":%s"

	// KeyScoreReport 评分报告缓存 (STRING, JSON序列化)
	// 格式: app:score:report:{submissionUUID}
	KeyScoreReport = AppPrefix + ":" + ScoreModulePrefix + ":" + EntityReport + ":%s"

	// KeyScoreRetry 单份提交的消费重试计数 (STRING, 数值)
	// 格式: app:score:retry:{submissionUUID}
	KeyScoreRetry = AppPrefix + ":" + ScoreModulePrefix + ":" + EntityRetry + ":%s"
)
