package modlist

import (
	"path/filepath"

	"github.com/go-ini/ini"
)

const metaFile = "meta.ini"

// Meta holds the fields of a mod's meta.ini the exporter cares about.
type Meta struct {
	Version  string
	URL      string
	NexusID  int
	GameName string
}

// ReadMeta loads the [General] section of dir/meta.ini.
func ReadMeta(dir string) (Meta, error) {
	cfg, err := ini.Load(filepath.Join(dir, metaFile))
	if err != nil {
		return Meta{}, err
	}

	general := cfg.Section("General")
	meta := Meta{
		Version:  general.Key("version").String(),
		NexusID:  general.Key("modid").MustInt(0),
		GameName: general.Key("gameName").String(),
	}

	// A url without the custom flag is a leftover of a previous download source.
	if general.HasKey("hasCustomURL") && !general.Key("hasCustomURL").MustBool(false) {
		return meta, nil
	}
	meta.URL = general.Key("url").String()

	return meta, nil
}
