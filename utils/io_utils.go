package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SafeSaveIOToFile 先写入同目录下的临时文件, 写完后rename覆盖目标文件, 返回写入的字节数
func SafeSaveIOToFile(dst string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("create directory failed, err:%w", err)
	}
	tmp := dst + "." + uuid.NewString() + ".temp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("create tmp file failed, err:%w", err)
	}
	defer os.Remove(tmp)
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("copy stream to tmp file failed, err:%w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close tmp file failed, err:%w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return 0, fmt.Errorf("rename tmp file failed, err:%w", err)
	}
	return n, nil
}
