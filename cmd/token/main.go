// Command token 为运维人员签发调用写接口所需的 access token。
package main

import (
	"flag"
	"fmt"
	"os"

	"dome-admin-go/internal/config"
	"dome-admin-go/pkg/token"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	subject := flag.String("subject", "", "调用方标识")
	role := flag.String("role", "USER", "角色，删除列表项需要 ADMIN")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "必须指定 -subject")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "jwt.secret 为空，服务端未启用鉴权")
		os.Exit(1)
	}

	signed, err := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours).GenerateToken(*subject, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发 token 失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(signed)
}
