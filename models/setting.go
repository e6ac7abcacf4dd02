package models

import "database/sql"

// GetSetting 读取全局设置项，不存在时返回空串
func GetSetting(name string) (string, error) {
	var value string
	err := DB.QueryRow(`SELECT value FROM setting WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func SetSetting(name, value string) error {
	_, err := DB.Exec(
		`INSERT INTO setting (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = ?`,
		name, value, value,
	)
	return err
}
