package store

// resolveBuildAlias maps a build name or alias to a real build name.
// builds must be in import order.
func resolveBuildAlias(name string, builds []Build) (string, error) {
	switch name {
	case AliasMostRecent:
		if len(builds) == 0 {
			return "", ErrAliasNotFound
		}

		return builds[len(builds)-1].Build, nil

	case AliasLastSuccessful:
		for i := len(builds) - 1; i >= 0; i-- {
			if builds[i].IsSuccess() {
				return builds[i].Build, nil
			}
		}

		return "", ErrAliasNotFound
	}

	for _, b := range builds {
		if b.Build == name {
			return name, nil
		}
	}

	return "", ErrAliasNotFound
}
