package model

import "time"

const AppName = "nfs-manager"

const (
	DefaultExportsFile   = "/etc/exports"
	DefaultExportOptions = "rw,sync,no_subtree_check"
)

// ExportsConfig is shared by every command that touches the exports file.
type ExportsConfig struct {
	File           string `env:"NFS_EXPORTS_FILE" envDefault:"/etc/exports"`
	IncludeUnnamed bool   `env:"NFS_READ_UNNAMED" envDefault:"false"`
}

type ProvisionConfig struct {
	Exports      ExportsConfig
	Options      string `env:"NFS_EXPORT_OPTIONS" envDefault:"rw,sync,no_subtree_check"`
	Owner        string `env:"NFS_OWNER" envDefault:"nobody:nogroup"`
	Mode         string `env:"NFS_MODE" envDefault:"777"`
	ServiceUnit  string `env:"NFS_SERVICE_UNIT" envDefault:"nfs-kernel-server"`
	ExportfsBin  string `env:"NFS_EXPORTFS_BIN" envDefault:"exportfs"`
	SystemctlBin string `env:"NFS_SYSTEMCTL_BIN" envDefault:"systemctl"`
	ChownBin     string `env:"NFS_CHOWN_BIN" envDefault:"chown"`
	ChmodBin     string `env:"NFS_CHMOD_BIN" envDefault:"chmod"`

	// only used for the mount hint
	HostIP        string `env:"NFS_HOST_IP"`
	HostInterface string `env:"NFS_HOST_INTERFACE"`
	HostCIDR      string `env:"NFS_HOST_CIDR"`
}

type AgentConfig struct {
	Provision         ProvisionConfig
	ListenAddr        string        `env:"AGENT_LISTEN_ADDR" envDefault:":8080"`
	Tokens            string        `env:"AGENT_TOKENS,required"`
	TLSCert           string        `env:"AGENT_TLS_CERT"`
	TLSKey            string        `env:"AGENT_TLS_KEY"`
	ReconcileInterval time.Duration `env:"AGENT_RECONCILE_INTERVAL" envDefault:"10m"`
}
