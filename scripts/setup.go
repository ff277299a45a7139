//go:build ignore

package main

import (
	"flag"
	"log"
	"os"
	"os/exec"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	skipData := flag.Bool("skip-data", false, "跳过示例成绩初始化")
	flag.Parse()

	log.Println("BaseDefender 数据库完整设置")

	log.Println("步骤 1/3: 重置数据库...")
	if err := runCommand("go", "run", "scripts/db_manager.go", "-action=reset", "-config="+*configPath); err != nil {
		log.Fatalf("重置数据库失败: %v", err)
	}

	log.Println("步骤 2/3: 初始化表结构...")
	if err := runCommand("go", "run", "scripts/db_manager.go", "-action=init", "-config="+*configPath); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	if *skipData {
		log.Println("步骤 3/3: 跳过示例成绩")
	} else {
		log.Println("步骤 3/3: 写入示例成绩...")
		if err := runCommand("go", "run", "scripts/init_data.go", "-config="+*configPath); err != nil {
			log.Fatalf("写入示例成绩失败: %v", err)
		}
	}

	log.Println("数据库设置完成")
}

// runCommand 执行命令并把输出接到当前终端
func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
