package benchmark

type Config struct {
	Host string
	Port int
}

type Logger struct {
	Level string
}

type Database struct {
	Config *Config `inject:""`
	Logger *Logger `inject:""`
}

type Cache struct {
	Logger *Logger `inject:""`
}

type Repository struct {
	DB    *Database `inject:""`
	Cache *Cache    `inject:""`
}

type Service struct {
	Repo   *Repository `inject:""`
	Logger *Logger     `inject:""`
}

func NewDatabase(cfg *Config, log *Logger) *Database {
	return &Database{Config: cfg, Logger: log}
}

func NewCache(log *Logger) *Cache {
	return &Cache{Logger: log}
}

func NewRepository(db *Database, cache *Cache) *Repository {
	return &Repository{DB: db, Cache: cache}
}

func NewService(repo *Repository, log *Logger) *Service {
	return &Service{Repo: repo, Logger: log}
}
