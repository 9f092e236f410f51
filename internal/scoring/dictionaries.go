package scoring

// Dictionaries 评分引擎依赖的全部查找表
// 在构造引擎时一次性注入，运行期间只读，因此并发评分无需加锁
type Dictionaries struct {
	// Synonyms 技能同义词表，key为小写技能名
	// 没有词条的技能，其同义词集合就是它自身
	Synonyms map[string][]string

	// 学历层级关键词，按层级独立检测，聚合器自行应用 phd > master > bachelor 的优先级
	BachelorKeywords []string
	MasterKeywords   []string
	PhDKeywords      []string

	// SoftSkills 内置软技能关键词表，在检查完岗位要求的软技能后始终额外扫描
	SoftSkills []string

	// ProjectIndicators 项目证据指示词，每命中一个不同的词加10分
	ProjectIndicators []string
	// ProjectLinkHints 项目链接提示词，命中任意一个额外加20分
	ProjectLinkHints []string
}

// DefaultDictionaries 返回内置的默认查找表
func DefaultDictionaries() Dictionaries {
	return Dictionaries{
		Synonyms: map[string][]string{
			"javascript":       {"js", "javascript", "ecmascript"},
			"typescript":       {"typescript", "ts"},
			"python":           {"python", "py"},
			"java":             {"java"},
			"golang":           {"go", "golang"},
			"c++":              {"c++", "cpp"},
			"c#":               {"c#", "csharp", "c sharp"},
			"react":            {"react", "reactjs", "react js"},
			"angular":          {"angular", "angularjs"},
			"vue":              {"vue", "vuejs", "vue js"},
			"node":             {"node", "nodejs", "node js"},
			"nodejs":           {"node", "nodejs", "node js"},
			"express":          {"express", "expressjs"},
			"next":             {"next", "nextjs", "next js"},
			"html":             {"html", "html5"},
			"css":              {"css", "css3"},
			"sql":              {"sql"},
			"mysql":            {"mysql"},
			"postgresql":       {"postgresql", "postgres"},
			"mongodb":          {"mongodb", "mongo"},
			"redis":            {"redis"},
			"aws":              {"aws", "amazon web services"},
			"azure":            {"azure", "microsoft azure"},
			"gcp":              {"gcp", "google cloud"},
			"docker":           {"docker"},
			"kubernetes":       {"kubernetes", "k8s"},
			"git":              {"git", "github", "gitlab"},
			"rest":             {"rest", "restful", "rest api"},
			"graphql":          {"graphql"},
			"machine learning": {"machine learning", "ml"},
			"deep learning":    {"deep learning", "dl"},
			"data science":     {"data science", "data scientist"},
			"devops":           {"devops", "ci cd", "cicd"},
		},

		BachelorKeywords: []string{"bachelor", "bachelors", "b tech", "btech", "b e", "b sc", "bsc", "bca", "b com", "bba", "undergraduate"},
		MasterKeywords:   []string{"master", "masters", "m tech", "mtech", "m e", "m sc", "msc", "mca", "mba", "postgraduate", "post graduate"},
		PhDKeywords:      []string{"phd", "ph d", "doctorate", "doctoral"},

		SoftSkills: []string{
			"leadership",
			"communication",
			"teamwork",
			"problem solving",
			"adaptability",
			"creativity",
			"time management",
		},

		ProjectIndicators: []string{
			"project", "developed", "built", "created", "implemented",
			"designed", "github", "portfolio", "application", "website",
		},
		ProjectLinkHints: []string{"github", "gitlab", "portfolio", "demo", "live"},
	}
}
