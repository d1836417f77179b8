package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Load подгружает переменные из .env файлов. Отсутствующий файл не ошибка:
// на устройстве и в CI конфигурация приходит из окружения.
// Уже заданные переменные окружения не перезаписываются.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil {
			continue
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", f, err)
	}
	return nil
}

// Override задает переменную окружения, если значение непустое.
// Используется для флагов командной строки, которые важнее .env.
func Override(key, value string) error {
	if value == "" {
		return nil
	}
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("failed to set %s environment variable: %w", key, err)
	}
	return nil
}
